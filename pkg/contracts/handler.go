package contracts

import "github.com/julienschmidt/httprouter"

// RoutePrefixes are the mount points for every API route. The bare paths and
// the /api paths serve the same handlers.
var RoutePrefixes = []string{"", "/api"}

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Mount registers the same handle under every prefix.
func Mount(router *httprouter.Router, method, path string, handle httprouter.Handle) {
	for _, prefix := range RoutePrefixes {
		router.Handle(method, prefix+path, handle)
	}
}

// Paths expands path with every prefix.
func Paths(path string) []string {
	paths := make([]string, 0, len(RoutePrefixes))
	for _, prefix := range RoutePrefixes {
		paths = append(paths, prefix+path)
	}
	return paths
}
