package products

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxImageSize is the largest accepted image upload
const DefaultMaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// imageKey is the storage key of an image file name under a product
func imageKey(productID int64, name string) string {
	return fmt.Sprintf("products/%d/%s", productID, name)
}

// imagePath is the public URL path serving an image file name
func imagePath(productID int64, name string) string {
	return fmt.Sprintf("/products/%d/image/%s", productID, name)
}

// validImageName reports whether name is a plain file name inside a product's image directory
func validImageName(name string) bool {
	return name != "" && name == path.Base(name) && !strings.HasPrefix(name, ".")
}

// storedImageName returns the file name of an image URL set by HandleUploadImage
func storedImageName(productID int64, imageURL *string) (string, bool) {
	if imageURL == nil {
		return "", false
	}
	name, ok := strings.CutPrefix(*imageURL, imagePath(productID, ""))
	if !ok || !validImageName(name) {
		return "", false
	}
	return name, true
}

// isManagedImageURL reports whether url points into the image endpoints,
// which only HandleUploadImage may write
func isManagedImageURL(url string) bool {
	rest, ok := strings.CutPrefix(url, "/products/")
	return ok && strings.Contains(rest, "/image/")
}

func (h *Handler) requireStorage(c *gin.Context) bool {
	if h.storage == nil {
		common.RespondError(c, errors.ErrStorageUnavailable.WithMessage("Image storage is not configured"))
		return false
	}
	return true
}

// HandleUploadImage stores a product image and points image_url at it.
// A previously uploaded image is removed.
// @Summary      Upload a product image
// @Tags         Products
// @Accept       multipart/form-data
// @Produce      json
// @Param        product_id  path      int   true  "Product ID"
// @Param        file        formData  file  true  "JPEG, PNG, WebP or GIF image"
// @Success      201         {object}  ImageResponse
// @Failure      400         {object}  common.ErrorResponse
// @Failure      401         {object}  common.ErrorResponse
// @Failure      403         {object}  common.ErrorResponse
// @Failure      404         {object}  common.ErrorResponse
// @Failure      413         {object}  common.ErrorResponse
// @Failure      503         {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{product_id}/image [post]
func (h *Handler) HandleUploadImage(c *gin.Context) {
	if !h.requireStorage(c) {
		return
	}
	product, ok := h.ownedProduct(c, "update")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.BadRequest(c, "Missing image file in form field 'file'")
		return
	}
	if fileHeader.Size > h.maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
			Error:   "Request Entity Too Large",
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Image exceeds %d bytes", h.maxImageSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, err)
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		common.BadRequest(c, "Could not read image file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		common.BadRequest(c, "Unsupported image type "+contentType)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		common.RespondError(c, err)
		return
	}

	name := uuid.NewString() + ext
	ctx := c.Request.Context()
	if err := h.storage.Upload(ctx, imageKey(product.ID, name), file, fileHeader.Size, contentType); err != nil {
		common.RespondError(c, err)
		return
	}

	url := imagePath(product.ID, name)
	if err := h.productRepo.SetImageURL(ctx, product.ID, url); err != nil {
		if delErr := h.storage.Delete(ctx, imageKey(product.ID, name)); delErr != nil {
			log.Warn("Failed to remove orphaned image", "product_id", product.ID, "error", delErr)
		}
		common.RespondError(c, err)
		return
	}

	if old, ok := storedImageName(product.ID, product.ImageURL); ok {
		if err := h.storage.Delete(ctx, imageKey(product.ID, old)); err != nil {
			log.Warn("Failed to remove previous image", "product_id", product.ID, "error", err)
		}
	}

	log.Info("Product image uploaded", "product_id", product.ID, "size", fileHeader.Size, "backend", h.storage.Type())
	c.JSON(http.StatusCreated, ImageResponse{ImageURL: url, Size: fileHeader.Size, ContentType: contentType})
}

// HandleGetImage streams a product image
// @Summary      Download a product image
// @Tags         Products
// @Produce      image/jpeg,image/png,image/webp,image/gif
// @Param        product_id  path      int     true  "Product ID"
// @Param        name        path      string  true  "Image file name"
// @Success      200
// @Failure      404         {object}  common.ErrorResponse
// @Failure      503         {object}  common.ErrorResponse
// @Router       /products/{product_id}/image/{name} [get]
func (h *Handler) HandleGetImage(c *gin.Context) {
	if !h.requireStorage(c) {
		return
	}
	id, ok := common.ParseID(c, "product_id")
	if !ok {
		return
	}

	name := c.Param("name")
	if !validImageName(name) {
		common.BadRequest(c, "Invalid image name")
		return
	}

	product, err := h.productRepo.GetActive(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if current, ok := storedImageName(product.ID, product.ImageURL); !ok || current != name {
		common.RespondError(c, errors.ErrStorageNotFound.WithMessagef("Product %d has no image %s", id, name))
		return
	}

	reader, info, err := h.storage.Download(c.Request.Context(), imageKey(id, name))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{"Cache-Control": "public, max-age=86400"}
	if info.ETag != "" {
		headers["ETag"] = info.ETag
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, reader, headers)
}
