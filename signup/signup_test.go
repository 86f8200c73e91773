package signup

import (
	"testing"

	"bakeryapi/apperr"
	"bakeryapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customer() models.UserRegister {
	return models.UserRegister{
		Name:            "Ploy",
		Email:           "  Ploy@Example.com ",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
		Role:            "customer",
	}
}

func TestValidateCustomer(t *testing.T) {
	assert.NoError(t, Validate(customer()))
	assert.Equal(t, []Step{StepAccount, StepRole}, Steps("customer"))
}

func TestValidateOwnerNeedsBusinessStep(t *testing.T) {
	in := customer()
	in.Role = "owner"

	err := Validate(in)
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
	fields := Fields(err)
	assert.Equal(t, "is required", fields["bakery_name"])
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "address")

	in.BakeryName = "Butter & Co"
	in.Phone = "0899999999"
	in.Address = "5 Oven Road, Bangkok"
	assert.NoError(t, Validate(in))
	assert.Equal(t, []Step{StepAccount, StepRole, StepBusiness}, Steps("owner"))
}

func TestValidateStepGatesOnEarlierSteps(t *testing.T) {
	in := customer()
	in.ConfirmPassword = "different"

	err := ValidateStep(StepRole, in)
	require.Error(t, err)
	assert.Equal(t, "does not match", Fields(err)["confirm_password"])

	assert.Error(t, ValidateStep(StepAccount, in))
}

func TestValidateStepAccountOnly(t *testing.T) {
	in := customer()
	in.Role = ""

	assert.NoError(t, ValidateStep(StepAccount, in))
	err := ValidateStep(StepRole, in)
	require.Error(t, err)
	assert.Equal(t, "is required", Fields(err)["role"])
}

func TestValidateRejectsBadFields(t *testing.T) {
	in := customer()
	in.Email = "not-an-email"
	in.Password = "short"
	in.ConfirmPassword = "short"

	fields := Fields(ValidateStep(StepAccount, in))
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])

	in = customer()
	in.Role = "admin"
	assert.Contains(t, Fields(Validate(in))["role"], "must be one of")
}

func TestValidateStepUnknown(t *testing.T) {
	err := ValidateStep(Step(9), customer())
	require.Error(t, err)
	assert.Nil(t, Fields(err))
}

func TestNormalize(t *testing.T) {
	n := Normalize(customer())
	assert.Equal(t, "ploy@example.com", n.Email)
}
