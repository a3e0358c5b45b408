package handlers

import (
	"bytes"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/porchlight-app/porchlight-backend/internal/httpx"
	"github.com/porchlight-app/porchlight-backend/internal/storage"
)

// AttachmentHandler stores and serves image attachments for messages whose
// message_type is "image"; the message body carries the attachment key.
type AttachmentHandler struct {
	store *storage.S3Storage
}

func NewAttachmentHandler(store *storage.S3Storage) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	if h.store == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_unavailable", "Attachment storage is not configured")
	}
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "Could not read upload")
	}
	defer file.Close()

	data, contentType, size, err := storage.ProcessAttachmentImage(file, storage.DefaultAttachmentOptions())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return httpx.BadRequest(c, "file_too_large", "Attachment exceeds the size limit")
		case errors.Is(err, storage.ErrUnsupported), errors.Is(err, storage.ErrInvalidImage):
			return httpx.BadRequest(c, "unsupported_image", "Only JPEG, PNG and WebP images are accepted")
		default:
			return httpx.Internal(c, "attachment_processing_failed")
		}
	}

	// The response key is relative to the attachments prefix; clients fetch
	// it back via GET /attachments/<key>.
	name := uuid.NewString() + ".jpg"
	key, err := storage.SafeObjectKey("attachments", name)
	if err != nil {
		return httpx.Internal(c, "attachment_upload_failed")
	}
	if _, err := h.store.PutObject(c.Context(), key, bytes.NewReader(data), size, contentType); err != nil {
		log.Printf("Attachment upload failed: %v", err)
		return httpx.Internal(c, "attachment_upload_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key":          name,
		"content_type": contentType,
		"size":         size,
	})
}

func (h *AttachmentHandler) Get(c *fiber.Ctx) error {
	if h.store == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_unavailable", "Attachment storage is not configured")
	}
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	key, err := storage.SafeObjectKey("attachments", c.Params("*"))
	if err != nil {
		return httpx.BadRequest(c, "invalid_key", "Invalid attachment key")
	}

	obj, stat, err := h.store.GetObject(c.Context(), key)
	if err != nil {
		return httpx.Error(c, fiber.StatusNotFound, "attachment_not_found", "Attachment not found")
	}
	defer obj.Close()

	c.Set("Content-Type", stat.ContentType)
	c.Set("ETag", stat.ETag)
	c.Set("Cache-Control", "private, max-age=86400")
	return c.SendStream(obj, int(stat.Size))
}
