package boot

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
	"github.com/Joker-Pro-Max/Pineapple/pkg/crypto"
	"github.com/Joker-Pro-Max/Pineapple/pkg/redis"
)

// Services 包含所有服务实例
type Services struct {
	TokenCodec        service.TokenCodec
	Denylist          service.TokenDenylist
	Resolver          service.PermissionResolver
	Authenticator     service.Authenticator
	Gate              service.AuthorizationGate
	AuthService       service.AuthService
	UserService       service.UserService
	SystemService     service.SystemService
	RoleService       service.RoleService
	PermissionService service.PermissionService
	CategoryService   service.CategoryService
	FileService       service.FileService
	SuperuserService  service.SuperuserService
}

// InitSigner 按配置选择HS256或RS256
func InitSigner(cfg *config.JWTConfig) (*service.TokenSigner, error) {
	switch strings.ToUpper(cfg.Algorithm) {
	case "RS256":
		privateKey, publicKey, err := crypto.LoadRSAKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		return service.NewRSASigner(privateKey, publicKey), nil
	case "HS256", "":
		return service.NewHMACSigner(cfg.Secret), nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", cfg.Algorithm)
	}
}

// InitServices 初始化所有服务实例，blobs为nil时不提供文件服务
func InitServices(
	cfg *config.Config,
	repos *Repositories,
	blobs repository.BlobStore,
	redisClient *redis.Client,
	observers ...service.DecisionObserver,
) (*Services, error) {
	signer, err := InitSigner(&cfg.JWT)
	if err != nil {
		return nil, err
	}

	codec := service.NewTokenCodec(
		signer,
		time.Duration(cfg.JWT.AccessTokenExpire)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpire)*time.Minute,
	)
	denylist := service.NewTokenDenylist(redisClient)
	resolver := service.NewPermissionResolver(repos.UserRepo, repos.GrantRepo)
	authenticator := service.NewAuthenticator(codec, denylist, resolver)

	wechat := service.NewWechatClient(
		cfg.Wechat.BaseURL,
		cfg.Wechat.AppID,
		cfg.Wechat.AppSecret,
		time.Duration(cfg.Wechat.Timeout)*time.Second,
	)

	services := &Services{
		TokenCodec:        codec,
		Denylist:          denylist,
		Resolver:          resolver,
		Authenticator:     authenticator,
		Gate:              service.NewAuthorizationGate(authenticator, resolver, observers...),
		AuthService:       service.NewAuthService(repos.UserRepo, repos.SystemRepo, resolver, codec, denylist, wechat),
		UserService:       service.NewUserService(repos.UserRepo, repos.RoleRepo, repos.SystemRepo, repos.PermissionRepo),
		SystemService:     service.NewSystemService(repos.SystemRepo),
		RoleService:       service.NewRoleService(repos.RoleRepo, repos.SystemRepo, repos.PermissionRepo),
		PermissionService: service.NewPermissionService(repos.PermissionRepo),
		CategoryService:   service.NewCategoryService(repos.CategoryRepo),
		SuperuserService:  service.NewSuperuserService(repos.UserRepo),
	}
	if blobs != nil && repos.FileRepo != nil {
		services.FileService = service.NewFileService(repos.FileRepo, blobs, repos.CategoryRepo, cfg.Upload.MaxSize)
	}
	return services, nil
}
