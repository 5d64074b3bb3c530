package util

import (
	"snaketests_backend/internal/config"
	"sync/atomic"
)

// Pagination 每页条数，配置热更新时原子替换
type Pagination struct {
	postsPerPage   atomic.Int64
	quizzesPerPage atomic.Int64
}

func NewPagination(cfg config.PaginationConfig) *Pagination {
	p := &Pagination{}
	p.Apply(cfg)
	return p
}

func (p *Pagination) Apply(cfg config.PaginationConfig) {
	if cfg.PostsPerPage > 0 {
		p.postsPerPage.Store(int64(cfg.PostsPerPage))
	}
	if cfg.QuizzesPerPage > 0 {
		p.quizzesPerPage.Store(int64(cfg.QuizzesPerPage))
	}
}

func (p *Pagination) PostsPerPage() int {
	return int(p.postsPerPage.Load())
}

func (p *Pagination) QuizzesPerPage() int {
	return int(p.quizzesPerPage.Load())
}
