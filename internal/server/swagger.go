package server

//go:generate swag init -g internal/server/server.go -o docs

// @title Sitescan API
// @version 1.0
// @description API d'analyse de conformité Loi 25 pour sites web.
// @contact.name Conformeo
// @contact.url https://conformeo.ca
// @BasePath /
