package spots

// Record is a crowdsourced parking-spot report.
type Record struct {
	ID        string  `json:"ID" bson:"_id"`
	Timestamp int64   `json:"Timestamp" bson:"timestamp"` // unix milliseconds
	Latitude  float64 `json:"Latitude" bson:"latitude"`
	Longitude float64 `json:"Longitude" bson:"longitude"`
}
