package response

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
)

// maxBody bounds how much of a response is read.
const maxBody = 32 << 20

// Decode parses body into T. A body without results decodes to an empty envelope.
func Decode[T any, P interface {
	*T
	Payload
}](body []byte) Envelope[T] {
	if len(bytes.TrimSpace(body)) == 0 {
		return Empty[T]()
	}

	var v T
	if err := json.Unmarshal(body, P(&v)); err != nil {
		return Failure[T](cioerrors.NewDecode(err))
	}
	P(&v).setRawData(string(body))

	if !P(&v).HasContent() {
		return Empty[T]()
	}
	return Success(v)
}

// Read turns an HTTP response into an envelope. Error statuses become
// HTTP or unauthorized failures. The body is read but not closed.
func Read[T any, P interface {
	*T
	Payload
}](resp *http.Response) Envelope[T] {
	if err := cioerrors.ParseHTTPError(resp); err != nil {
		return Failure[T](err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Failure[T](cioerrors.NewTransport(err))
	}
	return Decode[T, P](body)
}
