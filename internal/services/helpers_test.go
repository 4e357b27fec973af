package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/store"
	"github.com/AnshRaj112/nutrameter-backend/pkg/utils"
)

var (
	testLoc = time.FixedZone("test", 2*60*60)
	testNow = time.Date(2026, 10, 17, 15, 0, 0, 0, testLoc)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func cheapHasher() *utils.PasswordHasher {
	return utils.NewPasswordHasher(utils.Argon2Params{Time: 1, MemoryKiB: 1024, Parallelism: 1})
}

func newTestUserService(s store.Store) *UserService {
	return NewUserService(s, cheapHasher(), NewTokenService("secret", time.Hour), zap.NewNop())
}
