package embed

import (
	"context"
	"fmt"
	"io"
	"os"

	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"
)

// Uploads each image file and returns an app.bsky.embed.images embed, with alt applied to every image.
//
// Every file is read and size-checked before the first upload, so a file
// larger than MaxImageSize fails with ErrPayloadTooLarge and nothing is
// uploaded. The number of images is not checked here.
func (b *Builder) Images(ctx context.Context, paths []string, alt string) (*appbsky.EmbedImages, error) {
	files := make([][]byte, len(paths))
	for i, p := range paths {
		data, err := readImage(p)
		if err != nil {
			return nil, err
		}
		files[i] = data
	}

	images := make([]*appbsky.EmbedImages_Image, 0, len(paths))
	for i, p := range paths {
		// TODO: strip EXIF metadata from JPEG files before upload
		blob, err := b.upload(ctx, files[i], MimeTypeForPath(p))
		if err != nil {
			return nil, fmt.Errorf("uploading image %s: %w", p, err)
		}
		b.Logger.Debug("uploaded image", "path", p, "size", len(files[i]), "cid", blob.Ref.String())
		images = append(images, &appbsky.EmbedImages_Image{
			Alt:   alt,
			Image: blob,
		})
	}
	return &appbsky.EmbedImages{
		Images: images,
	}, nil
}

func readImage(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", p, err)
	}
	if len(data) > MaxImageSize {
		size := int64(len(data))
		if fi, err := f.Stat(); err == nil {
			size = fi.Size()
		}
		return nil, &PayloadTooLargeError{Name: p, Size: size, Limit: MaxImageSize}
	}
	return data, nil
}
