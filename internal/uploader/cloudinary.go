package uploader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	cldupload "github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads images to a Cloudinary account configured via a
// cloudinary:// URL.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (u *Cloudinary) UploadImage(ctx context.Context, folder string, filename string, r io.Reader) (string, error) {
	publicID := filename
	if i := strings.LastIndex(filename, "."); i > 0 {
		publicID = filename[:i]
	}

	resp, err := u.cld.Upload.Upload(ctx, r, cldupload.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return resp.SecureURL, nil
}
