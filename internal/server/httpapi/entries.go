package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
)

// entryResponse is an entry as listed, with the description rendered for HTML.
type entryResponse struct {
	services.EntryView
	DescriptionHTML string `json:"description_html"`
}

type indexResponse struct {
	Entries  []entryResponse  `json:"entries"`
	Daily    timesheet.Matrix `json:"daily"`
	ShowYear bool             `json:"show_year"`
}

type entryCreatedResponse struct {
	Message string        `json:"message"`
	Entry   entryResponse `json:"entry"`
}

func (s *Server) entryViews(list []*models.Entry) []entryResponse {
	views := services.NewEntryViews(list, s.reports.ReferenceYear(), time.Now())
	out := make([]entryResponse, 0, len(views))
	for _, v := range views {
		out = append(out, entryResponse{EntryView: v, DescriptionHTML: Linkify(v.Description)})
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := s.entries.List(ctx)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	daily, err := s.reports.Daily(ctx)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, indexResponse{
		Entries:  s.entryViews(list),
		Daily:    daily,
		ShowYear: s.reports.ShowYear(daily.Keys),
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	list, err := s.entries.List(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, s.entryViews(list))
}

// readEntryForm parses a urlencoded or multipart form. The returned cleanup
// releases multipart temp files.
func (s *Server) readEntryForm(w http.ResponseWriter, r *http.Request) (services.EntryInput, *models.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+1<<20)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil && err != http.ErrNotMultipart {
		return services.EntryInput{}, nil, noop, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	in := services.EntryInput{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Date:        r.FormValue("date"),
		FromTime:    r.FormValue("from_time"),
		ToTime:      r.FormValue("to_time"),
		Duration:    r.FormValue("duration"),
		Task:        r.FormValue("task"),
		Description: r.FormValue("description"),
	}

	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	f, h, err := r.FormFile("file")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return in, nil, cleanup, nil
	}
	if err != nil {
		return in, nil, cleanup, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	up := &models.Upload{
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
		Body:        f,
	}
	return in, up, func() { _ = f.Close(); cleanup() }, nil
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, up, cleanup, err := s.readEntryForm(w, r)
	defer cleanup()
	if err != nil {
		s.fail(ctx, w, err)
		return
	}

	e, err := s.entries.Add(ctx, in, up)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusCreated, entryCreatedResponse{
		Message: fmt.Sprintf("Logged %s for %s on %s", timesheet.HoursToHM(e.Hours()), e.Name, e.Date),
		Entry:   s.entryViews([]*models.Entry{e})[0],
	})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, up, cleanup, err := s.readEntryForm(w, r)
	defer cleanup()
	if err != nil {
		s.fail(ctx, w, err)
		return
	}

	e, err := s.entries.Update(ctx, r.PathValue("id"), in, up)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, s.entryViews([]*models.Entry{e})[0])
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryFile(w http.ResponseWriter, r *http.Request) {
	url, err := s.entries.AttachmentURL(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
		return
	}
	f, err := s.files.Open(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
		return
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	setAttachment(w, "time_log.csv")
	if err := s.entries.Export(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), "export failed", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	var body io.Reader = r.Body
	if err := r.ParseMultipartForm(s.maxUploadSize); err == nil {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file")
			return
		}
		defer f.Close()
		defer r.MultipartForm.RemoveAll()
		body = f
	} else if err != http.ErrNotMultipart {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.entries.Import(ctx, body)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"imported": res.Imported,
		"skipped":  res.Skipped,
		"message":  fmt.Sprintf("Imported %d entries", res.Imported),
	})
}
