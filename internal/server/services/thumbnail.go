package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
)

// thumbnail edge length in pixels; previews keep aspect ratio within the box
const thumbnailSize = 200

var errUnsupportedThumbnail = errors.New("unsupported thumbnail type")

func thumbnailable(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// makeThumbnail decodes the image payload, scales it down and re-encodes it
// as JPEG.
func makeThumbnail(mimeType string, data []byte) ([]byte, error) {
	var img image.Image
	var err error

	switch mimeType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/gif":
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, errUnsupportedThumbnail
	}
	if err != nil {
		return nil, err
	}

	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// storeThumbnail renders the preview and writes it next to the original blob
// under "<key>.thumb". Returns the thumbnail key.
func (s *FileService) storeThumbnail(ctx context.Context, key, mimeType string, payload []byte) (string, error) {
	thumb, err := makeThumbnail(mimeType, payload)
	if err != nil {
		return "", err
	}

	thumbKey := key + ".thumb"
	if err := s.blobs.Put(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		return "", err
	}
	return thumbKey, nil
}
