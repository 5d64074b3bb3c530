package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 头像上传相关常量
const (
	AvatarMaxSide   = 200
	AvatarDirectory = "profile_pics"
)

var (
	AllowedAvatarExtensions = []string{".jpg", ".jpeg", ".png"}
)

// 上下文键
const (
	ContextUser  = "user"
	ContextActor = "actor"
	ContextToken = "claims"
)
