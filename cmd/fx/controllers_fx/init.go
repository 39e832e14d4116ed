package controllers_fx

import (
	"go.uber.org/fx"

	"grassmap/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewSessionController),
	fx.Provide(controllers.NewMapController),
	fx.Provide(controllers.NewShareController),
	fx.Provide(controllers.NewLookupController))
