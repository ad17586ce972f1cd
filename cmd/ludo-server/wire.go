//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"

	"github.com/yola1107/lumina-ludo/internal/biz"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/internal/data"
)

// wireApp init ludo application.
func wireApp(*conf.Bootstrap) (*app, func(), error) {
	panic(wire.Build(data.ProviderSet, biz.ProviderSet, newApp))
}
