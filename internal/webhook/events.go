package webhook

// Catalog events subscribers can hook into.
const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeleted     = "product.deleted"
	EventProductBulkDeleted = "product.bulk_deleted"
	EventUploadCompleted    = "upload.completed"
)
