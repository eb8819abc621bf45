// Package extract turns uploaded files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/AgentChief/accredis/utils"
)

// MaxUploadBytes is the largest file accepted for extraction.
const MaxUploadBytes = 20 << 20

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts plain text from data according to its declared content type.
// Oversized, unsupported or corrupt input yields an InvalidArgument error.
func Text(data []byte, contentType string) (string, error) {
	if len(data) > MaxUploadBytes {
		return "", utils.InvalidArgument("File too large")
	}

	mediaType := normaliseType(contentType)
	var (
		text string
		err  error
	)
	switch {
	case mediaType == MIMEPDF:
		text, err = pdfText(data)
	case mediaType == MIMEDOCX:
		text, err = docxText(data)
	case isPlainText(mediaType):
		if !utf8.Valid(data) {
			err = errors.New("file is not valid UTF-8 text")
		} else {
			text = string(data)
		}
	default:
		return "", utils.InvalidArgument(fmt.Sprintf("unsupported file type %q", mediaType))
	}
	if err != nil {
		return "", utils.InvalidArgument(fmt.Sprintf("Failed to process file: %v", err))
	}
	return text, nil
}

func normaliseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func isPlainText(mediaType string) bool {
	return mediaType == "" ||
		mediaType == "application/octet-stream" ||
		strings.HasPrefix(mediaType, "text/")
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// docxText returns the text of each paragraph in word/document.xml joined by newlines.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
