package models

import "github.com/dmitrijs2005/codecredits/internal/common"

// Page is a 1-based page/limit pair translated to skip/limit on the wire.
type Page struct {
	Page  int
	Limit int
}

// Normalize fills zero or negative fields with defaults.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = common.DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = common.DefaultLimit
	}
	return p
}

// Skip is the number of records before this page.
func (p Page) Skip() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Count is the body of the various /count endpoints.
type Count struct {
	Count int64 `json:"count"`
}
