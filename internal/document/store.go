package document

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
)

// Load reads and validates a trips.json file. The root must be a JSON object
// carrying a "trips" array; anything else is ErrInvalidDocument. Unknown
// extra keys at the root are ignored so older files carrying extra metadata
// still load.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tripeditErrors.NewDocumentError(path, err)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, tripeditErrors.NewDocumentError(path,
			tripeditErrors.Wrap(tripeditErrors.ErrInvalidDocument, err.Error()))
	}
	raw, ok := root["trips"]
	if !ok {
		return nil, tripeditErrors.NewDocumentError(path, tripeditErrors.ErrInvalidDocument)
	}

	doc := New()
	if err := json.Unmarshal(raw, &doc.Trips); err != nil {
		return nil, tripeditErrors.NewDocumentError(path,
			tripeditErrors.Wrap(tripeditErrors.ErrInvalidDocument, err.Error()))
	}
	return doc, nil
}

// Save writes the document as human-readable UTF-8 JSON with two-space
// indentation, the format the legacy files are committed in. The parent
// directory must already exist.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return tripeditErrors.NewDocumentError(path, err)
	}

	// Write through a sibling temp file so a crash mid-write never leaves a
	// truncated trips.json behind.
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return tripeditErrors.NewDocumentError(path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return tripeditErrors.NewDocumentError(path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return tripeditErrors.NewDocumentError(path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return tripeditErrors.NewDocumentError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return tripeditErrors.NewDocumentError(path, err)
	}
	return nil
}
