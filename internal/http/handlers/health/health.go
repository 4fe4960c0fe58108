// Package health отдает статус работоспособности сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response ответ проверки работоспособности.
type Response struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
}

// Handler отвечает на проверки живости.
type Handler struct {
	name string
}

// New создает новый Handler с именем сервиса.
func New(name string) *Handler {
	return &Handler{name: name}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Tags Health
// @Produce json
// @Success 200 {object} health.Response
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{OK: true, Name: h.name})
}
