// Package redirect перенаправляет пользователя на партнёрские ссылки
// по подписанным коротким URL воронки.
package redirect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/funnel-bot/internal/http/response"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sig"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
)

// UserRegistry доступ к пользователям по click_id.
type UserRegistry interface {
	GetUserByClickID(ctx context.Context, clickID string) (*models.User, error)
}

// Settings партнёрские ссылки когорты A и секрет подписи.
type Settings interface {
	PbSecret(ctx context.Context) (string, error)
	RefRegA(ctx context.Context) (string, error)
	RefDepA(ctx context.Context) (string, error)
}

// Links статичные партнёрские ссылки когорты B.
type Links struct {
	RefRegB string
	RefDepB string
}

// Handler обрабатывает подписанные редиректы /r и /d.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	repo     UserRegistry
	settings Settings
	links    Links
	kind     string // sig.KindRegistration или sig.KindDeposit
}

// New создает новый Handler для заданного вида ссылки.
func New(log *slog.Logger, repo UserRegistry, settings Settings, links Links, kind string) *Handler {
	return &Handler{
		log:      log,
		repo:     repo,
		settings: settings,
		links:    links,
		kind:     kind,
	}
}

// ServeHTTP godoc
// @Summary Редирект на партнёрскую ссылку
// @Description Проверяет HMAC-подпись и перенаправляет на ссылку регистрации или депозита с проброшенным click_id
// @Tags Redirects
// @Param click_id path string true "Сквозной идентификатор клика"
// @Param sig path string true "HMAC-подпись"
// @Success 307 "Перенаправление на партнёрскую ссылку"
// @Failure 403 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 503 {object} response.ErrorResponse "Ссылка не настроена"
// @Router /r/{click_id}/{sig} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clickID := chi.URLParam(r, "click_id")
	signature := chi.URLParam(r, "sig")
	if clickID == "" {
		clickID = r.URL.Query().Get("click_id")
		signature = r.URL.Query().Get("sig")
	}
	h.redirect(w, r, clickID, signature)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, clickID, signature string) {
	const op = "handlers.redirect"
	log := h.log.With(slog.String("op", op), slog.String("kind", h.kind))

	ctx := r.Context()

	secret, err := h.settings.PbSecret(ctx)
	if err != nil {
		log.Error("failed to read postback secret", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if !sig.Verify(secret, h.kind, clickID, signature) {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("bad signature"))
		return
	}

	user, err := h.repo.GetUserByClickID(ctx, clickID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to find user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	base, err := h.baseLink(ctx, user)
	if err != nil {
		log.Error("failed to read affiliate link", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if base == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("link is not configured"))
		return
	}

	target, err := withClickID(base, clickID)
	if err != nil {
		log.Error("failed to build target url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("redirecting",
		slog.Int64("telegram_id", user.TelegramID),
		slog.String("group", user.Group))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// baseLink выбирает партнёрскую ссылку по когорте пользователя.
// Когорта B использует статичные ссылки из конфигурации.
func (h *Handler) baseLink(ctx context.Context, user *models.User) (string, error) {
	if user.Group == models.GroupB {
		if h.kind == sig.KindDeposit {
			return h.links.RefDepB, nil
		}
		return h.links.RefRegB, nil
	}
	if h.kind == sig.KindDeposit {
		return h.settings.RefDepA(ctx)
	}
	return h.settings.RefRegA(ctx)
}

// withClickID добавляет click_id в query партнёрской ссылки.
func withClickID(base, clickID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("click_id", clickID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
