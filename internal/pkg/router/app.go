package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dealerseo/seodash/app/controllers"
	"github.com/dealerseo/seodash/app/repository"
	apiv1 "github.com/dealerseo/seodash/internal/api/v1"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/assistant"
	"github.com/dealerseo/seodash/internal/pkg/middleware"
	"github.com/dealerseo/seodash/internal/pkg/notification"
	"github.com/dealerseo/seodash/internal/pkg/quota"
	"github.com/dealerseo/seodash/internal/pkg/requests"
	"github.com/dealerseo/seodash/internal/pkg/security"
	"github.com/dealerseo/seodash/internal/pkg/seoworks"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// Options carries everything the API needs. Nil collaborators disable the
// matching feature.
type Options struct {
	Repos         *repository.Repositories
	Token         security.TokenConfig
	Seoworks      *seoworks.Config
	Notifier      notification.Notifier
	Archiver      seoworks.Archiver
	ProgressCache quota.Cache
	Completer     assistant.Completer
	Limiter       LimiterConfig
}

// Services are the domain services behind the API, also used by background
// jobs.
type Services struct {
	Quota     *quota.Service
	Seoworks  *seoworks.Service
	Requests  *requests.Service
	Assistant *assistant.Service
}

// NewServices wires the domain services from opts.
func NewServices(o Options) *Services {
	notifier := o.Notifier
	if notifier == nil {
		notifier = notification.Noop{}
	}

	q := quota.NewService(o.Repos)
	if o.ProgressCache != nil {
		q.WithCache(o.ProgressCache)
	}

	hooks := seoworks.NewService(o.Repos, o.Seoworks).
		WithNotifier(notifier).
		WithProgressInvalidator(q)
	if o.Archiver != nil {
		hooks.WithArchiver(o.Archiver)
	}

	reqs := requests.NewService(o.Repos).
		WithNotifier(notifier).
		WithProgressInvalidator(q)
	if client := seoworks.NewClient(o.Seoworks); client != nil {
		reqs.WithVendorSync(client, hooks)
	}

	return &Services{
		Quota:     q,
		Seoworks:  hooks,
		Requests:  reqs,
		Assistant: assistant.NewService(o.Repos.Chat, o.Completer, q),
	}
}

// ErrorHandler renders apperror values, with field detail when exposeFields.
func ErrorHandler(exposeFields bool) fiber.ErrorHandler {
	return apperror.ErrorHandler(exposeFields, usercontext.GetUserID)
}

// Install wires services and controllers and mounts the API on app.
func Install(app *fiber.App, o Options) *Services {
	s := NewServices(o)
	server := apiv1.NewAPIServer(apiv1.Controllers{
		Auth:       controllers.NewAuthController(o.Repos.User, o.Token),
		Webhook:    controllers.NewWebhookController(s.Seoworks),
		User:       controllers.NewUserController(o.Repos),
		Dealership: controllers.NewDealershipController(o.Repos, s.Quota),
		Request:    controllers.NewRequestController(s.Requests),
		Chat:       controllers.NewChatController(s.Assistant),
	})
	auth := middleware.JWTAuth(o.Token, o.Repos.User)
	InstallRouter(app, NewApiRouter(server, auth, o.Limiter))
	return s
}
