package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/gabriel-vasile/mimetype"
)

// FilePart is an in-memory file field of a multipart request.
type FilePart struct {
	Filename string
	Data     []byte
	// ContentType defaults to the type sniffed from Data.
	ContentType string
}

type field struct {
	key   string
	value string
}

// flatten renders a parameter value into form fields. Slices become key[]
// entries and maps become key[sub] entries. Any value with a String method,
// which covers every enum type, renders as its string.
func flatten(key string, v any, out []field) []field {
	switch val := v.(type) {
	case nil:
		return out
	case string:
		return append(out, field{key, val})
	case bool:
		return append(out, field{key, strconv.FormatBool(val)})
	case int:
		return append(out, field{key, strconv.Itoa(val)})
	case int64:
		return append(out, field{key, strconv.FormatInt(val, 10)})
	case float64:
		return append(out, field{key, strconv.FormatFloat(val, 'f', -1, 64)})
	case time.Time:
		return append(out, field{key, val.UTC().Format(time.RFC3339)})
	case fmt.Stringer:
		return append(out, field{key, val.String()})
	case []string:
		for _, s := range val {
			out = append(out, field{key + "[]", s})
		}
		return out
	case []any:
		for _, item := range val {
			out = flatten(key+"[]", item, out)
		}
		return out
	case map[string]any:
		for _, k := range sortedKeys(val) {
			out = flatten(key+"["+k+"]", val[k], out)
		}
		return out
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return append(out, field{key, fmt.Sprint(val)})
		}
		return append(out, field{key, string(b)})
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func encodeQuery(params map[string]any) string {
	values := url.Values{}
	for _, k := range sortedKeys(params) {
		for _, f := range flatten(k, params[k], nil) {
			values.Add(f.key, f.value)
		}
	}
	return values.Encode()
}

func hasFile(params map[string]any) bool {
	for _, v := range params {
		switch v.(type) {
		case FilePart, *FilePart, *payload.Payload:
			return true
		}
	}
	return false
}

// encodeBody returns the request body and its content type.
func encodeBody(method Method, params map[string]any, requested string) ([]byte, string, error) {
	if hasFile(params) || strings.HasPrefix(requested, ContentTypeMultipart) {
		return encodeMultipart(params)
	}
	if method.paramsInQuery() {
		return nil, requested, nil
	}
	if len(params) == 0 {
		return nil, ContentTypeJSON, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, "", apperr.InvalidArgument("failed to marshal request body: %v", err)
	}
	return b, ContentTypeJSON, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(params map[string]any) ([]byte, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for _, k := range sortedKeys(params) {
		var part *FilePart
		switch v := params[k].(type) {
		case FilePart:
			part = &v
		case *FilePart:
			part = v
		case *payload.Payload:
			data, err := v.Bytes()
			if err != nil {
				return nil, "", fmt.Errorf("failed to read payload for %s: %w", k, err)
			}
			part = &FilePart{Filename: v.Filename(), Data: data}
		default:
			for _, f := range flatten(k, v, nil) {
				if err := w.WriteField(f.key, f.value); err != nil {
					return nil, "", fmt.Errorf("failed to write form field %s: %w", f.key, err)
				}
			}
			continue
		}

		if err := writeFilePart(w, k, part); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return b.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, name string, part *FilePart) error {
	filename := part.Filename
	if filename == "" {
		filename = name
	}
	contentType := part.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(part.Data).String()
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", name, err)
	}
	if _, err := pw.Write(part.Data); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", name, err)
	}
	return nil
}
