package account

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/unkani/unkani/pkg/model"
)

// RandomUser builds a NewUser with fake demographics.
// A zero seed picks a random one.
func RandomUser(seed uint64) NewUser {
	faker := gofakeit.New(int64(seed))

	dob := faker.DateRange(
		time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	addr := faker.Address()

	return NewUser{
		Username:  fmt.Sprintf("%s%d", faker.Username(), faker.Number(1000, 9999)),
		Password:  faker.Password(true, true, true, false, false, 16),
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Email:     faker.Email(),
		Phone:     faker.Phone(),
		DOB:       &dob,
		Address: &model.Address{
			Address1:   addr.Street,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.Zip,
			Country:    addr.Country,
		},
	}
}

// RandomizeUser creates an active, unconfirmed user with fake details,
// the default role and the default app group
func (s *Service) RandomizeUser(ctx context.Context) (*model.User, error) {
	return s.CreateUser(ctx, RandomUser(0))
}
