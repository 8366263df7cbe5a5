package controllers

import (
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/attachments"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// AttachmentsController manages client file attachments via signed URLs.
type AttachmentsController struct {
	svc  attachments.Service
	logg *logger.Logger
}

func NewAttachmentsController(svc attachments.Service, logg *logger.Logger) *AttachmentsController {
	return &AttachmentsController{svc: svc, logg: logg}
}

// RequestUpload reserves an attachment slot and returns the signed PUT URL.
func (c *AttachmentsController) RequestUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input attachments.UploadInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	userID, err := actingUserID(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	input.UploadedByUserID = userID

	ticket, err := c.svc.RequestUpload(ctx, clientID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
}

func (c *AttachmentsController) DownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "attachmentID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	url, err := c.svc.DownloadURL(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"download_url": url})
}

func (c *AttachmentsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "attachmentID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}

func (c *AttachmentsController) ListByClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	items, err := c.svc.ListByClient(ctx, clientID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}
