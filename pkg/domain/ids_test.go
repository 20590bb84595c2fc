package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "aegis/pkg/domain-errors"
)

// IDsSuite tests typed identifier parsing.
//
// Justification: Parse functions sit at every handler trust boundary; the
// invariant "empty or malformed input never produces a usable ID" must hold.
type IDsSuite struct {
	suite.Suite
}

func TestIDsSuite(t *testing.T) {
	suite.Run(t, new(IDsSuite))
}

func (s *IDsSuite) TestParseRoundTrip() {
	userID := NewUserID()
	parsed, err := ParseUserID(userID.String())
	s.Require().NoError(err)
	s.Equal(userID, parsed)

	tenantID := NewTenantID()
	parsedTenant, err := ParseTenantID(tenantID.String())
	s.Require().NoError(err)
	s.Equal(tenantID, parsedTenant)
}

func (s *IDsSuite) TestParseRejectsEmpty() {
	_, err := ParseUserID("")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseRoleID("")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *IDsSuite) TestParseRejectsMalformed() {
	_, err := ParseTenantID("not-a-uuid")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParsePrivilegeID("1234")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *IDsSuite) TestIsNil() {
	var zero UserID
	s.True(zero.IsNil())
	s.False(NewUserID().IsNil())
}
