package siteengine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/siteengine/blob"
	"github.com/eringen/siteengine/sitedata"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsPrefix = "uploads/"
	aiImagePrefix = "generated/"
)

var errInvalidImage = errors.New("invalid image")

// imageInfo describes a processed image.
type imageInfo struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// processImage decodes src, scales it down to maxImageWidth when wider and
// re-encodes it as JPEG.
func processImage(src io.Reader) (imageInfo, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return imageInfo{}, nil, fmt.Errorf("%w: %v", errInvalidImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return imageInfo{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return imageInfo{Width: w, Height: h, Size: int64(buf.Len())}, buf.Bytes(), nil
}

// imageKey derives a JPEG key under prefix from a file name or prompt.
func imageKey(prefix, name string) string {
	base := sitedata.Slugify(strings.TrimSuffix(name, path.Ext(name)))
	if len(base) > 60 {
		base = strings.Trim(base[:60], "-")
	}
	if base == "" {
		base = "image"
	}
	return prefix + base + ".jpg"
}

func mediaURL(key string) string { return "/media/" + key }

// storeImage processes src and writes it under a free key derived from name.
func (a *App) storeImage(c echo.Context, prefix, name string, src io.Reader) (imageInfo, error) {
	info, data, err := processImage(src)
	if err != nil {
		return info, err
	}
	ctx := c.Request().Context()
	key, err := blob.UniqueKey(ctx, a.Blobs, imageKey(prefix, name))
	if err != nil {
		return info, err
	}
	obj, err := a.Blobs.Put(ctx, key, bytes.NewReader(data), "image/jpeg")
	if err != nil {
		return info, err
	}
	info.Key = obj.Key
	info.URL = mediaURL(obj.Key)
	a.Logger.Info("image stored", zap.String("key", info.Key), zap.Int("width", info.Width), zap.Int64("size", info.Size))
	return info, nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "No image file provided.")
	}
	if file.Size > maxUploadSize {
		return jsonError(c, http.StatusRequestEntityTooLarge, "File too large (max 10MB).")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := a.storeImage(c, uploadsPrefix, file.Filename, io.LimitReader(src, maxUploadSize))
	if err != nil {
		if errors.Is(err, errInvalidImage) {
			return jsonError(c, http.StatusBadRequest, "Invalid image.")
		}
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

func (a *App) handleImageList(c echo.Context) error {
	ctx := c.Request().Context()
	var out []imageInfo
	for _, prefix := range []string{uploadsPrefix, aiImagePrefix} {
		objs, err := a.Blobs.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, o := range objs {
			out = append(out, imageInfo{Key: o.Key, URL: mediaURL(o.Key), Size: o.Size})
		}
	}
	if out == nil {
		out = []imageInfo{}
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleImageDelete(c echo.Context) error {
	key, err := blob.CleanKey(c.Param("*"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid image key.")
	}
	if err := a.Blobs.Delete(c.Request().Context(), key); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMedia serves stored images.
func (a *App) handleMedia(c echo.Context) error {
	key, err := blob.CleanKey(c.Param("*"))
	if err != nil {
		return echo.ErrNotFound
	}
	rc, obj, err := a.Blobs.Open(c.Request().Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	ct := obj.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(path.Ext(key))
	}
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, ct)
	h.Set("Cache-Control", "public, max-age=86400")
	if obj.Size > 0 {
		h.Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), rc)
	return err
}
