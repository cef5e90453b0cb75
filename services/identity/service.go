package identity

import (
	"context"
	"crypto/subtle"

	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[Identity]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[Identity](p.DB),
	}
}

// Verify resolves a credential pair to an identity. A stored bcrypt hash is
// authoritative; while a row still carries the legacy plaintext credential,
// a plaintext match is accepted once and the row is normalized to a hash in
// place. Legacy accounts are never dropped, only migrated.
func (s *Service) Verify(ctx context.Context, username, password string) (*Identity, error) {
	id, err := s.repo.FindOne(ctx, &Identity{Username: username})
	if err != nil {
		zap.L().Error("failed query identity", zap.String("username", username), zap.Error(err))
		return nil, errutil.Internal("failed to verify credentials", errutil.WithErr(err))
	}
	if id == nil {
		return nil, errutil.Unauthorized("invalid username or password")
	}

	if id.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)) != nil {
			return nil, errutil.Unauthorized("invalid username or password")
		}
		return id, nil
	}

	if id.Password == "" || subtle.ConstantTimeCompare([]byte(id.Password), []byte(password)) != 1 {
		return nil, errutil.Unauthorized("invalid username or password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash legacy credential", zap.String("username", username), zap.Error(err))
		return nil, errutil.Internal("failed to verify credentials", errutil.WithErr(err))
	}

	if err := s.repo.Update(ctx, id.ID, map[string]any{
		"password_hash": string(hash),
		"password":      "",
	}); err != nil {
		// The login itself succeeded; keep the legacy row and retry the
		// migration on the next login.
		zap.L().Warn("failed to normalize legacy credential", zap.String("username", username), zap.Error(err))
	} else {
		zap.L().Info("migrated legacy credential to bcrypt", zap.String("username", username))
		id.PasswordHash = string(hash)
		id.Password = ""
	}

	return id, nil
}

// Seed bootstraps the fixed roster into an empty store. It is a no-op when
// any identity already exists.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.repo.Count(ctx, &Identity{})
	if err != nil {
		return errutil.Internal("failed to count identities", errutil.WithErr(err))
	}
	if count > 0 {
		return nil
	}

	for _, member := range seedRoster {
		member.ID = s.node.Generate().String()
		if err := s.repo.Create(ctx, &member); err != nil {
			return errutil.Internal("failed to seed roster", errutil.WithErr(err))
		}
	}

	zap.L().Info("seeded identity roster", zap.Int("members", len(seedRoster)))
	return nil
}

// Operators returns the Operator identities, the only valid task assignees.
func (s *Service) Operators(ctx context.Context) ([]*Identity, error) {
	out, err := s.repo.Find(ctx, &Identity{Role: RoleOperator})
	if err != nil {
		return nil, errutil.Internal("failed to list operators", errutil.WithErr(err))
	}
	return out, nil
}

// OperatorNames returns the display names of the Operator roster.
func (s *Service) OperatorNames(ctx context.Context) ([]string, error) {
	operators, err := s.Operators(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(operators))
	for _, op := range operators {
		names = append(names, op.DisplayName)
	}
	return names, nil
}
