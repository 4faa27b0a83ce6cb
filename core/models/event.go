package models

import "net/url"

// StorageEvent is the notification payload delivered when an object is
// written to the store. Only the container name and object key are consumed.
type StorageEvent struct {
	Records []StorageRecord `json:"Records"`
}

// StorageRecord is one object-written record inside a StorageEvent
type StorageRecord struct {
	S3 StorageEntity `json:"s3"`
}

// StorageEntity identifies the bucket and object a record refers to
type StorageEntity struct {
	Bucket StorageBucket `json:"bucket"`
	Object StorageObject `json:"object"`
}

// StorageBucket names the container an event originated from
type StorageBucket struct {
	Name string `json:"name"`
}

// StorageObject carries the percent-encoded key of the written object
type StorageObject struct {
	Key string `json:"key"`
}

// DecodedKey returns the record's object key with percent-encoding and
// plus-encoded spaces undone
func (r StorageRecord) DecodedKey() (string, error) {
	return url.QueryUnescape(r.S3.Object.Key)
}
