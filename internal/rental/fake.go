package rental

import "context"

// FakeClient is a test implementation of Client
type FakeClient struct {
	Employees map[string]*Employee // keyed by employee id
	// Err, when set, is returned for every lookup.
	Err error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Employees: make(map[string]*Employee),
	}
}

func (c *FakeClient) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if employee, ok := c.Employees[id]; ok {
		return employee, nil
	}
	return nil, ErrEmployeeNotFound
}

// AddEmployee adds an employee to the fake for testing
func (c *FakeClient) AddEmployee(id string, employee *Employee) {
	c.Employees[id] = employee
}
