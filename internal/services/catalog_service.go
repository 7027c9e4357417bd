package services

import (
	"context"
	"time"

	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

// RouteSource is the backend side of the catalog.
type RouteSource interface {
	ListRoutes(ctx context.Context) ([]models.Route, error)
	ListStops(ctx context.Context, routeID string) ([]models.Stop, error)
}

// RouteCache is an optional read-through cache for catalog reads.
type RouteCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// CatalogService lists routes and the ordered stops of a route.
type CatalogService struct {
	Source    RouteSource
	Cache     RouteCache
	TTL       time.Duration
	RequestID string
}

func (s CatalogService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	const key = "catalog:routes"
	var routes []models.Route
	if s.cacheGet(ctx, key, &routes) {
		return routes, nil
	}
	routes, err := s.Source.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, routes)
	return routes, nil
}

// ListStops returns the stops of routeID sorted by sequence number.
func (s CatalogService) ListStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	key := "catalog:stops:" + routeID
	var stops []models.Stop
	if s.cacheGet(ctx, key, &stops) {
		return models.SortStops(stops), nil
	}
	stops, err := s.Source.ListStops(ctx, routeID)
	if err != nil {
		return nil, err
	}
	stops = models.SortStops(stops)
	s.cacheSet(ctx, key, stops)
	return stops, nil
}

func (s CatalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.Cache == nil {
		return false
	}
	ok, err := s.Cache.Get(ctx, key, dst)
	if err != nil {
		utils.LogEvent(s.RequestID, "catalog", "cache_get", "warning: "+err.Error())
		return false
	}
	return ok
}

func (s CatalogService) cacheSet(ctx context.Context, key string, v any) {
	if s.Cache == nil || s.TTL <= 0 {
		return
	}
	if err := s.Cache.Set(ctx, key, v, s.TTL); err != nil {
		utils.LogEvent(s.RequestID, "catalog", "cache_set", "warning: "+err.Error())
	}
}
