package config

import "github.com/stretchr/testify/mock"

// MockConfigProvider is a testify mock of ConfigProvider
type MockConfigProvider struct {
	mock.Mock
}

func (m *MockConfigProvider) GetConfig() *Config {
	args := m.Called()
	cnf, _ := args.Get(0).(*Config)
	return cnf
}

func (m *MockConfigProvider) SetApplicationConfig(cnf Config) error {
	args := m.Called(cnf)
	return args.Error(0)
}

func (m *MockConfigProvider) ReadFromEnv() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConfigProvider) ReadFromFile(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
