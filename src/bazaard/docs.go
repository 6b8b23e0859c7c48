// Package main Bazaar API
//
// @title           Bazaar API
// @version         1.0
// @description     Marketplace REST API - accounts, categories, products and reviews with role based access.
//
// @host            localhost:8000
// @BasePath        /
// @schemes         http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication. Prefix the token with "Bearer ".
package main
