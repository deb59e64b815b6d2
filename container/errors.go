package container

import "github.com/KOMKZ/go-yogan-ioc/errcode"

var (
	// ErrInstantiation a service could not be constructed
	ErrInstantiation = errcode.Register(errcode.New(
		20, 201, "ioc", "error.ioc.instantiation", "bean instantiation failed"))

	// ErrDependencyResolution no candidate for an injection point, or the
	// field cannot be set
	ErrDependencyResolution = errcode.Register(errcode.New(
		20, 301, "ioc", "error.ioc.dependency_resolution", "dependency cannot be resolved"))

	// ErrAmbiguousDependency more than one candidate for an injection point
	ErrAmbiguousDependency = errcode.Register(errcode.New(
		20, 302, "ioc", "error.ioc.ambiguous_dependency", "ambiguous dependency"))

	// ErrAlreadyBuilt Build called on a built container
	ErrAlreadyBuilt = errcode.Register(errcode.New(
		20, 503, "ioc", "error.ioc.already_built", "container already built"))

	// ErrNotBuilt lookup before Build
	ErrNotBuilt = errcode.Register(errcode.New(
		20, 504, "ioc", "error.ioc.not_built", "container not built"))
)
