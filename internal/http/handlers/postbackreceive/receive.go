// Package postbackreceive обрабатывает постбэки партнёрской сети.
package postbackreceive

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/funnel-bot/internal/http/response"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/services/postback"
)

// Request параметры постбэка из query string.
type Request struct {
	Event    string `validate:"omitempty"`
	ClickID  string `validate:"required"`
	TraderID string `validate:"omitempty"`
	SumDep   string `validate:"omitempty,numeric"`
	Token    string `validate:"omitempty"`
}

// Service обработчик постбэков.
type Service interface {
	Process(ctx context.Context, ev postback.Event) (*postback.Status, error)
}

// Handler принимает постбэки.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	service  Service
	validate *validator.Validate // Валидатор структуры входящих данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Принять постбэк партнёрской сети
// @Description Применяет событие (регистрация, депозит) к состоянию пользователя по click_id
// @Tags Postbacks
// @Produce json
// @Param event query string false "Тип события: reg, dep_first, dep_repeat, deposit"
// @Param click_id query string true "Сквозной идентификатор клика"
// @Param trader_id query string false "Идентификатор трейдера у партнёрки"
// @Param sumdep query number false "Сумма депозита"
// @Param t query string true "Общий секрет постбэков"
// @Success 200 {object} postback.Status "Событие применено"
// @Failure 400 {object} response.ErrorResponse "Отсутствует click_id"
// @Failure 403 {object} response.ErrorResponse "Неверный секрет"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pb [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.postbackreceive"
	log := h.log.With(slog.String("op", op))

	q := r.URL.Query()
	req := Request{
		Event:    q.Get("event"),
		ClickID:  q.Get("click_id"),
		TraderID: q.Get("trader_id"),
		SumDep:   q.Get("sumdep"),
		Token:    q.Get("t"),
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	amount := 0.0
	if req.SumDep != "" {
		amount, _ = strconv.ParseFloat(req.SumDep, 64)
	}

	ev := postback.Event{
		Kind:     postback.ParseEventKind(req.Event),
		RawEvent: req.Event,
		ClickID:  req.ClickID,
		TraderID: req.TraderID,
		Amount:   amount,
		Token:    req.Token,
	}

	status, err := h.service.Process(r.Context(), ev)
	if err != nil {
		switch {
		case errors.Is(err, postback.ErrUnauthorized):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case errors.Is(err, postback.ErrBadRequest):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing click_id"))
		case errors.Is(err, postback.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to process postback", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("postback processed",
		slog.String("event", req.Event),
		slog.Int64("telegram_id", status.TelegramID))
	render.JSON(w, r, status)
}
