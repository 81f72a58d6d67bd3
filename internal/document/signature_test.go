package document

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestEmbedSignature(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	markup := `<div><img id="signature-image" src="" alt="Unterschrift"></div>`

	filled, err := EmbedSignature(markup, image)
	if err != nil {
		t.Fatalf("EmbedSignature() error = %v", err)
	}

	wantURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	if !strings.Contains(filled, wantURI) {
		t.Errorf("embedded markup missing data URI %q", wantURI)
	}
	if strings.Contains(filled, signaturePlaceholder) {
		t.Error("placeholder still present after embedding")
	}
}

func TestEmbedSignatureNoSlot(t *testing.T) {
	if _, err := EmbedSignature("<div>no slot here</div>", []byte{1}); !errors.Is(err, ErrSignatureSlot) {
		t.Errorf("error = %v, want ErrSignatureSlot", err)
	}
}

func TestEmbedSignatureEmptyImage(t *testing.T) {
	markup := `<img id="signature-image" src="">`
	if _, err := EmbedSignature(markup, nil); !errors.Is(err, ErrSignatureImage) {
		t.Errorf("error = %v, want ErrSignatureImage", err)
	}
}
