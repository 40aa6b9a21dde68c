// Package account 提供承包商账户管理功能
package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("账户不存在")
	ErrAccountDisabled = errors.New("账户已禁用")
	ErrAccountExists   = errors.New("账户已存在")
)

// Account 承包商账户（一家灯光设计公司）
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"` // 账户代码（唯一）
	Name      string     `json:"name"` // 公司名称
	Plan      string     `json:"plan"` // 套餐：starter/pro/enterprise
	Status    string     `json:"status"`
	Settings  Settings   `json:"settings"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiredAt *time.Time `json:"expired_at,omitempty"`
}

// Settings 账户配置
type Settings struct {
	MaxTechnicians int      `json:"max_technicians"` // 最大技工数量
	MaxProjects    int      `json:"max_projects"`    // 最大项目数量
	APIRateLimit   int      `json:"api_rate_limit"`  // API请求频率限制（每分钟）
	Features       []string `json:"features"`        // 启用的功能
}

// IsActive 检查账户是否有效
func (a *Account) IsActive() bool {
	if a.Status != "active" {
		return false
	}
	if a.ExpiredAt != nil && a.ExpiredAt.Before(time.Now()) {
		return false
	}
	return true
}

// HasFeature 检查账户是否有某功能
func (a *Account) HasFeature(feature string) bool {
	for _, f := range a.Settings.Features {
		if f == feature || f == "*" {
			return true
		}
	}
	return false
}

// Manager 账户管理器
type Manager struct {
	accounts map[string]*Account // code -> Account
	byID     map[uuid.UUID]*Account
	mu       sync.RWMutex
}

// NewManager 创建账户管理器
func NewManager() *Manager {
	return &Manager{
		accounts: make(map[string]*Account),
		byID:     make(map[uuid.UUID]*Account),
	}
}

// Register 注册账户
func (m *Manager) Register(account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.Code]; exists {
		return ErrAccountExists
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	m.accounts[account.Code] = account
	m.byID[account.ID] = account
	return nil
}

// Get 按代码获取账户
func (m *Manager) Get(code string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, exists := m.accounts[code]
	if !exists {
		return nil, ErrAccountNotFound
	}

	if !account.IsActive() {
		return nil, ErrAccountDisabled
	}

	return account, nil
}

// GetByID 按ID获取账户
func (m *Manager) GetByID(id uuid.UUID) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, exists := m.byID[id]
	if !exists {
		return nil, ErrAccountNotFound
	}

	if !account.IsActive() {
		return nil, ErrAccountDisabled
	}

	return account, nil
}

// List 列出所有账户
func (m *Manager) List() []*Account {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	return accounts
}

// Remove 移除账户
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account, exists := m.accounts[code]; exists {
		delete(m.byID, account.ID)
		delete(m.accounts, code)
	}
}

type contextKey string

const accountContextKey contextKey = "account"

// WithAccount 将账户放入 context
func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// FromContext 从 context 获取账户
func FromContext(ctx context.Context) (*Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*Account)
	return account, ok
}

// DefaultSettings 默认账户配置
func DefaultSettings() Settings {
	return Settings{
		MaxTechnicians: 20,
		MaxProjects:    200,
		APIRateLimit:   120,
		Features:       []string{"schedule", "capacity", "recommend"},
	}
}

// CreateDefaultAccount 创建默认账户（开发环境使用）
func CreateDefaultAccount() *Account {
	return &Account{
		ID:        uuid.New(),
		Code:      "default",
		Name:      "默认账户",
		Plan:      "pro",
		Status:    "active",
		Settings:  DefaultSettings(),
		CreatedAt: time.Now(),
	}
}
