package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a domain's routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background loop owned by the application lifecycle.
type Worker interface {
	Start()
	Stop()
}
