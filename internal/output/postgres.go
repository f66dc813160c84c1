// Package output archives collection lifecycle events into Postgres over
// database/sql, one table per topic.
package output

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/lib/pq"
	"github.com/tablemate/tablemate/internal/models"

	_ "github.com/lib/pq"
)

type PostgresOutput struct {
	db *sql.DB
}

func NewPostgresOutput(config *models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &PostgresOutput{db: db}, nil
}

// WriteMessage inserts the JSON event into the topic's table, mapping
// camelCase field names onto snake_case columns.
func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	cols, vals, placeholders := buildInsertComponents(event)
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		topicToTable(topic),
		cols,
		placeholders,
	)

	_, err := p.db.Exec(query, vals...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", topicToTable(topic), err)
	}

	return nil
}

// BatchInsertOrderLines bulk-loads collected order lines, used when draining
// an in-memory session into the archive.
func (p *PostgresOutput) BatchInsertOrderLines(lines []*models.OrderLine) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn("order_lines",
		"id", "collection_uuid", "user", "order_text", "created_at"))
	if err != nil {
		return err
	}

	for _, line := range lines {
		if _, err = stmt.Exec(
			line.ID,
			line.CollectionUUID,
			line.User,
			line.Text,
			line.CreatedAt,
		); err != nil {
			return err
		}
	}

	if _, err = stmt.Exec(); err != nil {
		return err
	}
	if err = stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *PostgresOutput) Close() error {
	return p.db.Close()
}

func topicToTable(topic string) string {
	return strings.ReplaceAll(topic, "-", "_") + "_events"
}

func buildInsertComponents(event map[string]interface{}) (string, []interface{}, string) {
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, len(keys))
	vals := make([]interface{}, len(keys))
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = camelToSnake(k)
		vals[i] = normalizeValue(event[k])
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(cols, ", "), vals, strings.Join(placeholders, ", ")
}

// normalizeValue flattens nested JSON values into text so they fit generic
// archive columns.
func normalizeValue(v interface{}) interface{} {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return v
	}
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
