package collector

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tablemate/tablemate/internal/cloudwriter"
	"github.com/tablemate/tablemate/internal/collector/producers"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/output"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// Event topics. One sink file/stream/table per topic.
const (
	TopicOrderCollected   = "order_collected"
	TopicOrderInterpreted = "order_interpreted"
	TopicDealsSelected    = "deals_selected"
	TopicOrderSubmitted   = "order_submitted"
)

// parquetSchemas maps each topic to a prototype carrying the parquet tags.
var parquetSchemas = map[string]func() interface{}{
	TopicOrderCollected:   func() interface{} { return new(models.OrderCollectedEvent) },
	TopicOrderInterpreted: func() interface{} { return new(models.OrderInterpretedEvent) },
	TopicDealsSelected:    func() interface{} { return new(models.DealsSelectedEvent) },
	TopicOrderSubmitted:   func() interface{} { return new(models.OrderSubmittedEvent) },
}

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewOutputDestination picks the sink configured in OutputType. Unknown types
// fall back to console so a misconfigured sink never loses the session.
func NewOutputDestination(cfg *models.Config) OutputDestination {
	switch cfg.OutputType {
	case "kafka":
		producer, err := producers.NewSaramaProducer(cfg)
		if err != nil {
			log.Printf("Failed to create Kafka producer, falling back to console: %v", err)
			return &ConsoleOutput{}
		}
		return producer
	case "json":
		return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder)
	case "parquet":
		p, err := NewParquetOutput(cfg)
		if err != nil {
			log.Printf("Failed to create parquet output, falling back to console: %v", err)
			return &ConsoleOutput{}
		}
		return p
	case "postgres":
		p, err := output.NewPostgresOutput(&cfg.Database)
		if err != nil {
			log.Printf("Failed to create Postgres output, falling back to console: %v", err)
			return &ConsoleOutput{}
		}
		return p
	default:
		return &ConsoleOutput{}
	}
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	fmt.Printf("[%s] %s\n", topic, msg)
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput appends one JSON line per event to a per-topic file.
type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	file, ok := j.files[topic]
	if !ok {
		dir := filepath.Join(j.basePath, j.folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output folder: %w", err)
		}
		var err error
		file, err = os.OpenFile(filepath.Join(dir, topic+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening output file for %s: %w", topic, err)
		}
		j.files[topic] = file
	}
	if _, err := file.Write(append(msg, '\n')); err != nil {
		return err
	}
	return nil
}

func (j *JSONOutput) Close() error {
	var firstErr error
	for _, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ParquetOutput writes one parquet file per topic, locally or to cloud
// storage depending on OutputDestination.
type ParquetOutput struct {
	basePath           string
	folder             string
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(cfg *models.Config) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: cfg.OutputPath,
		folder:   cfg.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if cfg.OutputDestination != "local" {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			p.cloudWriterFactory = factory
			p.cloudBucketName = cfg.CloudStorage.BucketName
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
	}

	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	schema, ok := parquetSchemas[topic]
	if !ok {
		return fmt.Errorf("no parquet schema for topic %s", topic)
	}
	event := schema()
	if err := json.Unmarshal(msg, event); err != nil {
		return fmt.Errorf("decoding %s event: %w", topic, err)
	}

	w, ok := p.writers[topic]
	if !ok {
		file, err := p.openFile(topic)
		if err != nil {
			return err
		}
		w, err = writer.NewParquetWriter(file, schema(), 2)
		if err != nil {
			return fmt.Errorf("creating parquet writer for %s: %w", topic, err)
		}
		p.writers[topic] = w
		p.files[topic] = file
	}
	return w.Write(event)
}

func (p *ParquetOutput) openFile(topic string) (source.ParquetFile, error) {
	name := fmt.Sprintf("%s-%s.parquet", topic, time.Now().Format("20060102T150405"))
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(p.folder, name)
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("creating cloud writer for %s: %w", topic, err)
		}
		return cloudwriter.NewParquetFile(cw), nil
	}
	dir := filepath.Join(p.basePath, p.folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}
	return local.NewLocalFileWriter(filepath.Join(dir, name))
}

func (p *ParquetOutput) Close() error {
	var firstErr error
	for topic, w := range p.writers {
		if err := w.WriteStop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing parquet writer for %s: %w", topic, err)
		}
	}
	for topic, file := range p.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing parquet file for %s: %w", topic, err)
		}
	}
	return firstErr
}
