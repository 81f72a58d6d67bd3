package document

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// signaturePlaceholder is the empty-src image every layout emits when the
// record carries a signature. The embedder fills the src in after render so
// the template output itself stays byte-stable.
const signaturePlaceholder = `id="signature-image" src=""`

var (
	// ErrSignatureImage indicates signature bytes that cannot be embedded
	ErrSignatureImage = errors.New("signature image cannot be embedded")
	// ErrSignatureSlot indicates markup without a signature placeholder
	ErrSignatureSlot = errors.New("markup has no signature slot")
)

// EmbedSignature inlines the signature image into rendered markup as a PNG
// data URI. The markup must contain the placeholder emitted by the layouts;
// calling this on markup rendered from a record without a signature is a
// programming error and fails with ErrSignatureSlot.
func EmbedSignature(markup string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrSignatureImage)
	}

	if !strings.Contains(markup, signaturePlaceholder) {
		return "", ErrSignatureSlot
	}

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	filled := fmt.Sprintf(`id="signature-image" src="%s"`, uri)

	return strings.Replace(markup, signaturePlaceholder, filled, 1), nil
}
