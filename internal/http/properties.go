package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"clearplot/internal/domain"
	"clearplot/internal/listing"
	"clearplot/internal/service"
)

const (
	formImages         = "images"
	formExistingImages = "existingImages"
)

type submission struct {
	fields  map[string]string
	keep    []string
	uploads []service.ImageUpload
}

// readSubmission parses a multipart listing form. keep is nil when the form
// carries no existingImages field at all.
func (h *Handler) readSubmission(c *gin.Context) (*submission, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, newHTTPError(http.StatusRequestEntityTooLarge, "request too large", "REQUEST_TOO_LARGE")
		}
		return nil, domain.NewValidationError("", "invalid multipart form: %v", err)
	}

	sub := &submission{fields: make(map[string]string, len(form.Value))}
	for key, values := range form.Value {
		if key == formExistingImages || len(values) == 0 {
			continue
		}
		sub.fields[key] = values[0]
	}
	if values, ok := form.Value[formExistingImages]; ok {
		sub.keep = make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				sub.keep = append(sub.keep, v)
			}
		}
	}

	files := form.File[formImages]
	if len(files) > domain.MaxImages {
		return nil, domain.NewValidationError("", "%s", listing.ErrTooManyImages.Error())
	}
	for _, fh := range files {
		sub.uploads = append(sub.uploads, uploadFromHeader(fh))
	}
	return sub, nil
}

func uploadFromHeader(fh *multipart.FileHeader) service.ImageUpload {
	return service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *Handler) createProperty(c *gin.Context) {
	sub, err := h.readSubmission(c)
	if err != nil {
		fail(c, err)
		return
	}

	prop, err := h.properties.Create(c.Request.Context(), callerID(c), sub.fields, sub.uploads)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Property posted successfully", "property": propertyToResponse(*prop)})
}

func (h *Handler) updateProperty(c *gin.Context) {
	sub, err := h.readSubmission(c)
	if err != nil {
		fail(c, err)
		return
	}

	prop, err := h.properties.Update(c.Request.Context(), callerID(c), c.Param("id"), sub.fields, sub.keep, sub.uploads)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property updated successfully", "property": propertyToResponse(*prop)})
}

func (h *Handler) deleteProperty(c *gin.Context) {
	if err := h.properties.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully"})
}

func (h *Handler) getProperty(c *gin.Context) {
	prop, err := h.properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, propertyToResponse(*prop))
}

func (h *Handler) listOwnerProperties(c *gin.Context) {
	props, err := h.properties.ListByOwner(c.Request.Context(), c.Query("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, propertiesToResponse(props))
}

func (h *Handler) browseProperties(c *gin.Context) {
	filter, page, err := listing.ParseQuery(c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}

	res, err := h.properties.Browse(c.Request.Context(), callerID(c), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PropertyPageResponse{
		Properties:      propertiesToResponse(res.Properties),
		TotalProperties: res.Total,
		TotalPages:      res.TotalPages,
		CurrentPage:     res.CurrentPage,
	})
}

func (h *Handler) predictPrice(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, badJSON(err))
		return
	}

	price, err := h.properties.PredictPrice(c.Request.Context(), stringifyFields(raw))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"PredictedPrice": price})
}

type enhanceRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (h *Handler) enhanceDescription(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badJSON(err))
		return
	}

	enhanced, err := h.properties.EnhanceDescription(c.Request.Context(), req.Prompt)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enhanced": enhanced})
}

// stringifyFields flattens a JSON form into the string fields the listing
// parser works on, so numbers and strings are both accepted.
func stringifyFields(raw map[string]any) map[string]string {
	fields := make(map[string]string, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			fields[key] = val
		case float64:
			fields[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(val)
		default:
			fields[key] = fmt.Sprint(val)
		}
	}
	return fields
}
