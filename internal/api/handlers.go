package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pantry/internal/expiry"
	"pantry/internal/models"
	"pantry/internal/service"
)

type itemView struct {
	*models.Item
	Status expiry.Status `json:"status"`
}

type itemRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	ExpirationDate string `json:"expiration_date"`
	Barcode        string `json:"barcode"`
	Count          int64  `json:"count"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type categoryView struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Count int64  `json:"count"`
}

func (s *HTTPServer) today() time.Time {
	return expiry.Normalize(s.now().In(s.loc))
}

func (s *HTTPServer) views(items []*models.Item) []itemView {
	today := s.today()
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView{Item: it, Status: expiry.StatusOf(it, today)})
	}
	return out
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []*models.Item
		err   error
	)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		items, err = s.svc.ListByCategory(r.Context(), category)
	} else {
		items, err = s.svc.ListItems(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.views(items)})
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := s.svc.GetItem(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views([]*models.Item{item})[0])
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.decodeItem(w, r)
	if !ok {
		return
	}
	if err := s.svc.AddItem(r.Context(), item); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.views([]*models.Item{item})[0])
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, ok := s.decodeItem(w, r)
	if !ok {
		return
	}
	item.ID = id
	if err := s.svc.UpdateItem(r.Context(), item); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views([]*models.Item{item})[0])
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteItem(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleConsumeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, removed, err := s.svc.Consume(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item, "removed": removed})
}

func (s *HTTPServer) handleBarcode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "barcode is required")
		return
	}
	name := s.svc.ResolveBarcode(r.Context(), code)
	if name == "" {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"barcode": code, "name": name})
}

func (s *HTTPServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Timeline(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.views(items)})
}

func (s *HTTPServer) handleExpiring(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		now = d
	}

	dueToday, dueSoon, err := s.svc.Expiring(r.Context(), now)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if dueToday == nil {
		dueToday = []models.ExpiringEntry{}
	}
	if dueSoon == nil {
		dueSoon = []models.ExpiringEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"due_today": dueToday, "due_soon": dueSoon})
}

func (s *HTTPServer) handleListCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.CategorySummaries(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]categoryView, 0, len(summaries))
	for _, c := range summaries {
		out = append(out, categoryView{Name: c.Name, Color: c.Color.Hex(), Icon: c.Icon, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *HTTPServer) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if !decodeBody(w, r, &body) {
		return
	}

	color := models.ColorGray
	if body.Color != "" {
		c, err := models.ParseARGB(body.Color)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		color = c
	}

	var icon *models.IconID
	if body.Icon != "" {
		id, ok := models.IconByName(body.Icon)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown icon")
			return
		}
		icon = &id
	}

	if err := s.svc.AddCategory(r.Context(), body.Name, color, icon); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": strings.TrimSpace(body.Name), "color": color.Hex()})
}

func (s *HTTPServer) handleReorderCategories(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.svc.MoveCategory(r.Context(), body.From, body.To); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.handleListCategories(w, r)
}

func (s *HTTPServer) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if !decodeBody(w, r, &body) {
		return
	}
	color, err := models.ParseARGB(body.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := r.PathValue("name")
	if err := s.svc.UpdateCategoryColor(r.Context(), name, color); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "color": color.Hex()})
}

func (s *HTTPServer) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	cascade, _ := strconv.ParseBool(r.URL.Query().Get("cascade"))
	removed, err := s.svc.DeleteCategory(r.Context(), r.PathValue("name"), cascade)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items_removed": removed})
}

func (s *HTTPServer) decodeItem(w http.ResponseWriter, r *http.Request) (*models.Item, bool) {
	var body itemRequest
	if !decodeBody(w, r, &body) {
		return nil, false
	}

	item := &models.Item{
		Name:     body.Name,
		Category: body.Category,
		Barcode:  body.Barcode,
		Count:    body.Count,
	}
	if raw := strings.TrimSpace(body.ExpirationDate); raw != "" {
		exp, err := parseDate(raw, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expiration_date; expected YYYY-MM-DD or RFC3339")
			return nil, false
		}
		item.ExpirationDate = &exp
	}
	return item, true
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidItem), errors.Is(err, service.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCategoryInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
