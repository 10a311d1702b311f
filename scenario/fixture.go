package scenario

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Fixture is the test user shared by every scenario of a run.
type Fixture struct {
	Email    string
	Password string
	Name     string
}

// NewFixture builds a fixture whose email is <prefix>_<8 hex chars>@<domain>.
func NewFixture(prefix, domain, password, name string) Fixture {
	return Fixture{
		Email:    fmt.Sprintf("%s_%s@%s", prefix, randomSuffix(), domain),
		Password: password,
		Name:     name,
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
