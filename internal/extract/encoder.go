package extract

import (
	"encoding/base64"
	"fmt"

	"github.com/docuflow/statement-extraction-service/internal/imageutil"
)

const stageEncode = "encode_pages"

// PageImage is one rasterized statement page, in page order.
type PageImage struct {
	Index  int // 0-based page index
	Data   []byte
	Format string // always "jpeg"
}

// EncodedImage is the transport-safe form of a page: a base64 data URI plus
// the logical page index it came from.
type EncodedImage struct {
	Index   int
	DataURI string
}

// EncodeOptions controls page preparation before transport.
type EncodeOptions struct {
	MaxDimension int // downscale pages larger than this; <= 0 keeps original size
	JPEGQuality  int // re-encode quality when downscaling
}

// EncodeImages turns rasterized pages into base64 data URIs, preserving order
// and index. A statement with a missing page is not a statement, so any
// single page failure fails the whole call.
func EncodeImages(pages []PageImage, opts EncodeOptions) ([]EncodedImage, error) {
	encoded := make([]EncodedImage, 0, len(pages))
	for _, page := range pages {
		if len(page.Data) == 0 {
			return nil, NewPageError(KindEncodingFailure, stageEncode, page.Index,
				fmt.Errorf("page has no image data"))
		}

		data, err := imageutil.DownscaleJPEG(page.Data, opts.MaxDimension, opts.JPEGQuality)
		if err != nil {
			return nil, NewPageError(KindEncodingFailure, stageEncode, page.Index, err)
		}

		encoded = append(encoded, EncodedImage{
			Index:   page.Index,
			DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
		})
	}
	return encoded, nil
}
