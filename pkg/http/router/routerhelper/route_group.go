package routerhelper

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"
)

// RouteGroup. httprouter routes sharing a path prefix.
type RouteGroup struct {
	r *httprouter.Router
	p string
}

func NewRouteGroup(r *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{r: r, p: prefix}
}

func (g *RouteGroup) Group(prefix string) *RouteGroup {
	return NewRouteGroup(g.r, g.subPath(prefix))
}

func (g *RouteGroup) Handle(method, route string, handle httprouter.Handle) {
	g.r.Handle(method, g.subPath(route), handle)
}

func (g *RouteGroup) GET(route string, handle httprouter.Handle) {
	g.Handle(http.MethodGet, route, handle)
}

func (g *RouteGroup) HEAD(route string, handle httprouter.Handle) {
	g.Handle(http.MethodHead, route, handle)
}

func (g *RouteGroup) subPath(route string) string {
	return path.Join(g.p, route)
}
