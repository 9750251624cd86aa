package httpapi

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/service"
)

const (
	maxAudioBytes   = 50 << 20
	multipartMemory = 32 << 20
)

// readFormFile reads one multipart file, returning its bytes and content type.
func readFormFile(r *http.Request, field string) ([]byte, string, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", "", badRequest("invalid multipart form: %v", err)
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", badRequest("%s file is required", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAudioBytes+1))
	if err != nil {
		return nil, "", "", badRequest("read %s: %v", field, err)
	}
	if len(data) == 0 {
		return nil, "", "", badRequest("%s file is empty", field)
	}
	if len(data) > maxAudioBytes {
		return nil, "", "", badRequest("%s file exceeds %d bytes", field, maxAudioBytes)
	}
	return data, hdr.Header.Get("Content-Type"), hdr.Filename, nil
}

// tempPath places uploads under the user's prefix. Client-supplied paths are
// cleaned and re-rooted there too.
func tempPath(userID, requested, filename, contentType string) string {
	if requested != "" {
		p := strings.TrimPrefix(path.Clean("/"+requested), "/")
		if strings.HasPrefix(p, userID+"/") {
			return p
		}
		return userID + "/" + p
	}
	ext := path.Ext(filename)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".webm"
		}
	}
	return userID + "/" + uuid.New().String() + ext
}

// upload stores a file in the temporary bucket and returns its path.
func (h *Handlers) upload(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	data, contentType, filename, err := readFormFile(r, "file")
	if err != nil {
		fail(w, r, err, "Failed to upload file to storage")
		return
	}
	overwrite, _ := strconv.ParseBool(r.FormValue("overwrite"))

	p, err := h.app.Blobs.Upload(r.Context(), blob.Object{
		Bucket:      h.app.Config.TempBucket,
		Path:        tempPath(userID, r.FormValue("path"), filename, contentType),
		Data:        data,
		ContentType: contentType,
		Overwrite:   overwrite,
	})
	if err != nil {
		fail(w, r, err, "Failed to upload file to storage")
		return
	}
	ok(w, http.StatusCreated, "File uploaded successfully to storage", map[string]string{
		"bucket": h.app.Config.TempBucket,
		"path":   p,
	})
}

// createRecording runs the enrichment pipeline. Without tempPath the audio is
// first uploaded to the temporary bucket.
func (h *Handlers) createRecording(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	audio, contentType, filename, err := readFormFile(r, "audio")
	if err != nil {
		fail(w, r, err, "Failed to create voice note")
		return
	}

	var duration *int
	if v := r.FormValue("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			fail(w, r, badRequest("duration must be a non-negative integer"), "")
			return
		}
		duration = &d
	}

	ref := service.BlobRef{Bucket: h.app.Config.TempBucket}
	if tp := r.FormValue("tempPath"); tp != "" {
		ref.Path = tempPath(userID, tp, "", "")
	} else {
		ref.Path, err = h.app.Blobs.Upload(r.Context(), blob.Object{
			Bucket:      ref.Bucket,
			Path:        tempPath(userID, "", filename, contentType),
			Data:        audio,
			ContentType: contentType,
		})
		if err != nil {
			fail(w, r, err, "Failed to upload file to storage")
			return
		}
	}

	res, err := h.app.Pipeline.Run(r.Context(), service.RecordingInput{
		UserID:      userID,
		Audio:       audio,
		ContentType: contentType,
		Duration:    duration,
		Title:       r.FormValue("title"),
		TempBlob:    ref,
	})
	if err != nil {
		fail(w, r, err, "Failed to create voice note")
		return
	}
	ok(w, http.StatusCreated, "Voice note created successfully", res.Note)
}
