package entities

// TriggerEvent is what a single invocation was started with.
// It is either a DirectUpload or a StorageNotification.
type TriggerEvent interface {
	isTrigger()
}

// DirectUpload carries the image inside the invocation payload (API Gateway proxy).
type DirectUpload struct {
	Headers         map[string]string
	IsBase64Encoded bool
	Body            string
}

// StorageNotification lists objects that were already written to storage.
type StorageNotification struct {
	Records []ObjectRecord
}

// ObjectRecord is one object referenced by a storage notification.
type ObjectRecord struct {
	Bucket string
	Key    string
}

func (DirectUpload) isTrigger()        {}
func (StorageNotification) isTrigger() {}
