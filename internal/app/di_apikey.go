package app

import (
	"fmt"
	"sync"

	apikeyHTTP "github.com/allisson/apikeys/internal/apikey/http"
	apikeyRepository "github.com/allisson/apikeys/internal/apikey/repository"
	apikeyService "github.com/allisson/apikeys/internal/apikey/service"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
)

// apiKeyComponents groups the API key lifecycle dependencies held by Container.
type apiKeyComponents struct {
	secretGenerator   apikeyService.SecretGenerator
	secretHasher      apikeyService.SecretHasher
	apiKeyRepository  apikeyUseCase.APIKeyRepository
	auditEventRepo    apikeyUseCase.AuditEventRepository
	auditRecorder     apikeyUseCase.AuditRecorder
	apiKeyUseCase     apikeyUseCase.APIKeyUseCase
	sweeperUseCase    apikeyUseCase.SweeperUseCase
	sweeperWorker     *apikeyUseCase.SweeperWorker
	apiKeyHandler     *apikeyHTTP.APIKeyHandler
	auditEventHandler *apikeyHTTP.AuditEventHandler

	secretGeneratorInit   sync.Once
	secretHasherInit      sync.Once
	apiKeyRepositoryInit  sync.Once
	auditEventRepoInit    sync.Once
	auditRecorderInit     sync.Once
	apiKeyUseCaseInit     sync.Once
	sweeperUseCaseInit    sync.Once
	sweeperWorkerInit     sync.Once
	apiKeyHandlerInit     sync.Once
	auditEventHandlerInit sync.Once
}

// SecretGenerator returns the generator of plaintext API keys.
func (c *Container) SecretGenerator() apikeyService.SecretGenerator {
	c.secretGeneratorInit.Do(func() {
		c.secretGenerator = apikeyService.NewSecretGenerator(c.config.APIKeySecretLength)
	})
	return c.secretGenerator
}

// SecretHasher returns the hasher selected by API_KEY_HASH_ALGORITHM.
func (c *Container) SecretHasher() (apikeyService.SecretHasher, error) {
	c.secretHasherInit.Do(func() {
		if err := c.checkSecretLength(); err != nil {
			c.setInitError("secretHasher", err)
			return
		}
		hasher, err := apikeyService.NewSecretHasher(c.config.APIKeyHashAlgorithm, c.config.APIKeyBcryptCost)
		if err != nil {
			err = fmt.Errorf("failed to create secret hasher: %w", err)
		}
		c.secretHasher = hasher
		c.setInitError("secretHasher", err)
	})
	return c.secretHasher, c.getInitError("secretHasher")
}

// checkSecretLength rejects secret lengths whose longest plaintext key would be
// truncated by bcrypt.
func (c *Container) checkSecretLength() error {
	switch c.config.APIKeyHashAlgorithm {
	case "", apikeyService.HashAlgorithmBcrypt:
	default:
		return nil
	}
	length := c.config.APIKeySecretLength
	if length <= 0 {
		length = apikeyService.DefaultSecretLength
	}
	if total := len(apikeyService.SystemKeyPrefix) + length; total > apikeyService.BcryptMaxInputLength {
		return fmt.Errorf(
			"API_KEY_SECRET_LENGTH %d yields %d-byte keys, bcrypt only hashes the first %d",
			length, total, apikeyService.BcryptMaxInputLength,
		)
	}
	return nil
}

// APIKeyRepository returns the API key repository for the configured driver.
func (c *Container) APIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	c.apiKeyRepositoryInit.Do(func() {
		repo, err := c.initAPIKeyRepository()
		c.apiKeyRepository = repo
		c.setInitError("apiKeyRepository", err)
	})
	return c.apiKeyRepository, c.getInitError("apiKeyRepository")
}

// AuditEventRepository returns the audit event repository for the configured driver.
func (c *Container) AuditEventRepository() (apikeyUseCase.AuditEventRepository, error) {
	c.auditEventRepoInit.Do(func() {
		repo, err := c.initAuditEventRepository()
		c.auditEventRepo = repo
		c.setInitError("auditEventRepository", err)
	})
	return c.auditEventRepo, c.getInitError("auditEventRepository")
}

// AuditRecorder returns the recorder shared by the lifecycle manager and the sweeper.
func (c *Container) AuditRecorder() (apikeyUseCase.AuditRecorder, error) {
	c.auditRecorderInit.Do(func() {
		repo, err := c.AuditEventRepository()
		if err != nil {
			c.setInitError("auditRecorder", fmt.Errorf("failed to get audit event repository for audit recorder: %w", err))
			return
		}
		c.auditRecorder = apikeyUseCase.NewAuditRecorder(repo, c.Logger())
	})
	return c.auditRecorder, c.getInitError("auditRecorder")
}

// APIKeyUseCase returns the lifecycle manager wrapped with metrics.
func (c *Container) APIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	c.apiKeyUseCaseInit.Do(func() {
		useCase, err := c.initAPIKeyUseCase()
		c.apiKeyUseCase = useCase
		c.setInitError("apiKeyUseCase", err)
	})
	return c.apiKeyUseCase, c.getInitError("apiKeyUseCase")
}

// SweeperUseCase returns the expiration sweeper wrapped with metrics.
func (c *Container) SweeperUseCase() (apikeyUseCase.SweeperUseCase, error) {
	c.sweeperUseCaseInit.Do(func() {
		useCase, err := c.initSweeperUseCase()
		c.sweeperUseCase = useCase
		c.setInitError("sweeperUseCase", err)
	})
	return c.sweeperUseCase, c.getInitError("sweeperUseCase")
}

// SweeperWorker returns the periodic sweeper loop.
func (c *Container) SweeperWorker() (*apikeyUseCase.SweeperWorker, error) {
	c.sweeperWorkerInit.Do(func() {
		sweeper, err := c.SweeperUseCase()
		if err != nil {
			c.setInitError("sweeperWorker", fmt.Errorf("failed to get sweeper use case for sweeper worker: %w", err))
			return
		}
		c.sweeperWorker = apikeyUseCase.NewSweeperWorker(c.config.SweeperInterval, sweeper, c.Logger())
	})
	return c.sweeperWorker, c.getInitError("sweeperWorker")
}

// APIKeyHandler returns the HTTP handler for the key endpoints.
func (c *Container) APIKeyHandler(useCase apikeyUseCase.APIKeyUseCase) *apikeyHTTP.APIKeyHandler {
	c.apiKeyHandlerInit.Do(func() {
		c.apiKeyHandler = apikeyHTTP.NewAPIKeyHandler(useCase, c.Logger())
	})
	return c.apiKeyHandler
}

// AuditEventHandler returns the HTTP handler for the audit trail endpoint.
func (c *Container) AuditEventHandler(useCase apikeyUseCase.APIKeyUseCase) *apikeyHTTP.AuditEventHandler {
	c.auditEventHandlerInit.Do(func() {
		c.auditEventHandler = apikeyHTTP.NewAuditEventHandler(useCase, c.Logger())
	})
	return c.auditEventHandler
}

func (c *Container) initAPIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return apikeyRepository.NewMySQLAPIKeyRepository(db), nil
	case "postgres":
		return apikeyRepository.NewPostgreSQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditEventRepository() (apikeyUseCase.AuditEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return apikeyRepository.NewMySQLAuditEventRepository(db), nil
	case "postgres":
		return apikeyRepository.NewPostgreSQLAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAPIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for api key use case: %w", err)
	}
	apiKeyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}
	auditEventRepo, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for api key use case: %w", err)
	}
	auditRecorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for api key use case: %w", err)
	}
	hasher, err := c.SecretHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret hasher for api key use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
	}

	useCase := apikeyUseCase.NewAPIKeyUseCase(
		apikeyUseCase.Config{
			DefaultExpirationDays: c.config.APIKeyDefaultExpirationDays,
			MaxKeysPerUser:        c.config.APIKeyMaxKeysPerUser,
			RotationGracePeriod:   c.config.APIKeyRotationGracePeriod,
		},
		txManager,
		apiKeyRepo,
		auditEventRepo,
		auditRecorder,
		c.SecretGenerator(),
		hasher,
		c.Logger(),
	)
	return apikeyUseCase.NewAPIKeyUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initSweeperUseCase() (apikeyUseCase.SweeperUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for sweeper use case: %w", err)
	}
	apiKeyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for sweeper use case: %w", err)
	}
	auditRecorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for sweeper use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for sweeper use case: %w", err)
	}

	useCase := apikeyUseCase.NewSweeperUseCase(
		apikeyUseCase.SweeperConfig{
			Interval:  c.config.SweeperInterval,
			BatchSize: c.config.SweeperBatchSize,
		},
		txManager,
		apiKeyRepo,
		auditRecorder,
		c.Logger(),
	)
	return apikeyUseCase.NewSweeperUseCaseWithMetrics(useCase, businessMetrics), nil
}
