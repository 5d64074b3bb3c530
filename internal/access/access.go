// Package access 统一的授权判断：属主或超级用户。
// 中间件、页面接口和 REST 接口都通过 Check 做判断。
package access

import (
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Actor 当前调用者，nil 表示匿名
type Actor struct {
	ID        uint
	Superuser bool
}

// Owned 有属主的资源
type Owned interface {
	OwnerID() uint
}

func IsOwner(actor *Actor, resource Owned) bool {
	return actor != nil && resource != nil && actor.ID != 0 && actor.ID == resource.OwnerID()
}

func IsPrivileged(actor *Actor) bool {
	return actor != nil && actor.Superuser
}

// Policy 可组合的授权规则
type Policy func(actor *Actor) bool

var (
	Authenticated Policy = func(actor *Actor) bool { return actor != nil }
	Privileged    Policy = IsPrivileged
)

func Owner(resource Owned) Policy {
	return func(actor *Actor) bool { return IsOwner(actor, resource) }
}

// OwnerOrPrivileged 单条读取与修改的通用规则
func OwnerOrPrivileged(resource Owned) Policy {
	return Any(Owner(resource), Privileged)
}

func Any(policies ...Policy) Policy {
	return func(actor *Actor) bool {
		for _, p := range policies {
			if p(actor) {
				return true
			}
		}
		return false
	}
}

func All(policies ...Policy) Policy {
	return func(actor *Actor) bool {
		for _, p := range policies {
			if !p(actor) {
				return false
			}
		}
		return true
	}
}

// Check 匿名返回 401，已登录但不满足规则返回 403
func Check(actor *Actor, policy Policy) error {
	if actor == nil {
		return util.ErrAuthenticationRequired
	}
	if !policy(actor) {
		return util.ErrForbidden
	}
	return nil
}

func WithActor(c *gin.Context, actor *Actor) {
	c.Set(util.ContextActor, actor)
}

func FromContext(c *gin.Context) *Actor {
	v, exists := c.Get(util.ContextActor)
	if !exists {
		return nil
	}
	actor, _ := v.(*Actor)
	return actor
}
