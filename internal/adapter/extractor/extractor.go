// Package extractor turns uploaded files into plain-text context for the
// model. Each file kind has an ordered chain of strategies; the first one
// that succeeds wins.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"quizgen/internal/domain"
)

// Kind is the content category an upload was routed to.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindDOCX  Kind = "docx"
	KindText  Kind = "text"
)

// ErrNoText is returned by a strategy that decoded the file but found
// nothing usable in it.
var ErrNoText = errors.New("no readable text in file")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Detect routes a file by its declared MIME type, falling back to the
// filename extension when the MIME type says nothing useful.
func Detect(file *domain.UploadedFile) Kind {
	mt := strings.ToLower(file.ContentType)
	ext := strings.ToLower(filepath.Ext(file.Filename))

	switch {
	case strings.Contains(mt, "image"):
		return KindImage
	case strings.Contains(mt, "pdf"):
		return KindPDF
	case strings.Contains(mt, "word"):
		return KindDOCX
	}

	switch {
	case imageExtensions[ext]:
		return KindImage
	case ext == ".pdf":
		return KindPDF
	case ext == ".docx":
		return KindDOCX
	}
	return KindText
}

// ImageMIMEType returns the type to advertise in the image data URL.
func ImageMIMEType(file *domain.UploadedFile) string {
	if strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return file.ContentType
	}
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename))); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/png"
}

// Strategy extracts text from raw file bytes.
type Strategy interface {
	// Name identifies the strategy in logs and cache keys.
	Name() string
	// Label is the heading the text is embedded under in the prompt.
	Label() string
	Extract(data []byte) (string, error)
}

// Result is the output of the first successful strategy in a chain.
type Result struct {
	Strategy string `json:"strategy"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// StrategyError records why one strategy in a chain gave up.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// ChainError is returned when every strategy in a chain failed.
type ChainError struct {
	Kind     Kind
	Failures []*StrategyError
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("no extractor succeeded for %s file (%s)", e.Kind, strings.Join(parts, "; "))
}

func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Chain is an ordered list of strategies tried until one succeeds.
type Chain []Strategy

func (c Chain) Run(kind Kind, data []byte) (*Result, error) {
	chainErr := &ChainError{Kind: kind}
	for _, s := range c {
		text, err := s.Extract(data)
		if err != nil {
			chainErr.Failures = append(chainErr.Failures, &StrategyError{Strategy: s.Name(), Err: err})
			continue
		}
		return &Result{Strategy: s.Name(), Label: s.Label(), Text: text}, nil
	}
	return nil, chainErr
}

// Registry holds the chain for every text-bearing kind.
type Registry struct {
	chains map[Kind]Chain
}

// NewRegistry wires the default chains: PDF alone, DOCX with a raw-text
// fallback, and raw text for everything else.
func NewRegistry() *Registry {
	return &Registry{
		chains: map[Kind]Chain{
			KindPDF:  {PDF{}},
			KindDOCX: {DOCX{}, RawText{label: "CONTEXT (RAW)"}},
			KindText: {RawText{label: "CONTEXT", allowEmpty: true}},
		},
	}
}

// Extract runs the chain registered for kind. Failures are reported as
// UnsupportedFileError with a message matching the file kind.
func (r *Registry) Extract(_ context.Context, kind Kind, data []byte) (*Result, error) {
	chain, ok := r.chains[kind]
	if !ok {
		return nil, domain.NewUnsupportedFileError(fmt.Sprintf("No text extractor for %s files", kind), nil)
	}
	res, err := chain.Run(kind, data)
	if err != nil {
		return nil, domain.NewUnsupportedFileError(failureMessage(kind, err), err)
	}
	return res, nil
}

func failureMessage(kind Kind, err error) string {
	switch kind {
	case KindPDF:
		var chainErr *ChainError
		if errors.As(err, &chainErr) && len(chainErr.Failures) > 0 {
			return fmt.Sprintf("Error reading PDF: %v", chainErr.Failures[0].Err)
		}
		return "Error reading PDF"
	case KindDOCX:
		return "DOCX parsing failed. Try PDF or Text."
	default:
		return "Could not read any text from the uploaded file."
	}
}
