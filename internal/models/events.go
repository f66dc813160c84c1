package models

// BaseEvent is the common structure for all collection lifecycle events
type BaseEvent struct {
	Timestamp    int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType    string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	Chat         int64  `json:"chat" parquet:"name=chat,type=INT64"`
	CollectionID string `json:"collectionId,omitempty" parquet:"name=collectionId,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// OrderCollectedEvent represents one chat message added to a collection
type OrderCollectedEvent struct {
	BaseEvent
	User string `json:"user" parquet:"name=user,type=BYTE_ARRAY,convertedtype=UTF8"`
	Text string `json:"orderText" parquet:"name=orderText,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// OrderInterpretedEvent represents one order line run through the interpreter
type OrderInterpretedEvent struct {
	BaseEvent
	OrderText string `json:"orderText" parquet:"name=orderText,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemCodes string `json:"itemCodes" parquet:"name=itemCodes,type=BYTE_ARRAY,convertedtype=UTF8"`
	Matched   int32  `json:"matched" parquet:"name=matched,type=INT32"`
	Unmatched int32  `json:"unmatched" parquet:"name=unmatched,type=INT32"`
}

// DealsSelectedEvent represents the optimizer's choice for a submission
type DealsSelectedEvent struct {
	BaseEvent
	DealCodes     string `json:"dealCodes" parquet:"name=dealCodes,type=BYTE_ARRAY,convertedtype=UTF8"`
	ServiceMethod string `json:"serviceMethod" parquet:"name=serviceMethod,type=BYTE_ARRAY,convertedtype=UTF8"`
	Weekday       string `json:"weekday" parquet:"name=weekday,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// OrderSubmittedEvent represents a priced order handed back to the chat
type OrderSubmittedEvent struct {
	BaseEvent
	StoreID  string `json:"storeId" parquet:"name=storeId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Products int32  `json:"products" parquet:"name=products,type=INT32"`
	Coupons  int32  `json:"coupons" parquet:"name=coupons,type=INT32"`
}
