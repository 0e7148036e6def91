package api

import (
	"github.com/pagekiln/page-kiln/app/records"
	"github.com/pagekiln/page-kiln/app/site"
)

type Handler struct {
	repo    records.Repository
	site    *site.Config
	outDir  string
	version string
}
