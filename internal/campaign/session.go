package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/internal/models"
)

// Session 服务端向导会话
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"` // 编辑已有活动时非空
	Wizard     *Wizard    `json:"wizard"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SessionStore 向导会话存储
type SessionStore struct {
	store cache.Store
	ttl   time.Duration
}

// NewSessionStore 创建会话存储
func NewSessionStore(store cache.Store, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{store: store, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("wizard:session:%s", id)
}

// Get 读取会话
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := cache.GetJSON(ctx, s.store, sessionKey(id), &sess); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load wizard session: %w", err)
	}
	if sess.Wizard == nil {
		sess.Wizard = NewWizard()
	}
	return &sess, nil
}

// Save 写入会话并刷新过期时间
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := cache.SetJSON(ctx, s.store, sessionKey(sess.ID), sess, s.ttl); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

// Delete 删除会话
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, sessionKey(id))
}

// submitLockTTL 进程异常退出时锁的最长保留时间
const submitLockTTL = time.Minute

// Lock 获取会话提交锁，已被占用时返回 ErrSubmitInProgress
func (s *SessionStore) Lock(ctx context.Context, id string) (func(), error) {
	key := fmt.Sprintf("wizard:submit:%s", id)
	ok, err := s.store.SetNX(ctx, key, []byte("1"), submitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock wizard session: %w", err)
	}
	if !ok {
		return nil, ErrSubmitInProgress
	}
	return func() {
		_ = s.store.Delete(context.WithoutCancel(ctx), key)
	}, nil
}

// WizardService 驱动服务端向导会话
type WizardService struct {
	sessions  *SessionStore
	campaigns *Service
	logger    *zap.Logger
}

// NewWizardService 创建向导服务
func NewWizardService(sessions *SessionStore, campaigns *Service, logger *zap.Logger) *WizardService {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &WizardService{
		sessions:  sessions,
		campaigns: campaigns,
		logger:    logger.Named("campaign_wizard"),
	}
}

// Start 创建会话，campaignID 非空时载入该活动用于编辑
func (s *WizardService) Start(ctx context.Context, userID string, campaignID *uuid.UUID) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Wizard:    NewWizard(),
		CreatedAt: now,
	}
	if campaignID != nil {
		c, err := s.campaigns.Get(ctx, *campaignID)
		if err != nil {
			return nil, err
		}
		sess.CampaignID = campaignID
		sess.Wizard.LoadFromCampaign(c)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get 读取属于该用户的会话
func (s *WizardService) Get(ctx context.Context, userID, id string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// mutate 读取、修改并保存会话
func (s *WizardService) mutate(ctx context.Context, userID, id string, fn func(w *Wizard) error) (*Session, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Wizard.Saving {
		return nil, ErrWizardState.WithMessage("Wizard is being saved")
	}
	if err := fn(sess.Wizard); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Patch 更新表单字段
func (s *WizardService) Patch(ctx context.Context, userID, id string, patch FormPatch) (*Session, error) {
	return s.mutate(ctx, userID, id, func(w *Wizard) error {
		if err := w.Apply(patch); err != nil {
			return invalidForm(err)
		}
		return nil
	})
}

// Toggle 切换多选字段中的一个值
func (s *WizardService) Toggle(ctx context.Context, userID, id, field, value string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(w *Wizard) error {
		if err := w.Toggle(field, value); err != nil {
			return invalidForm(err)
		}
		return nil
	})
}

// Next 前进一步
func (s *WizardService) Next(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(w *Wizard) error {
		if err := w.Next(); err != nil {
			return ErrWizardState.WithError(err).WithMessage("Cannot advance: name and objective are required on step 1, step 3 is the last step")
		}
		return nil
	})
}

// Back 后退一步
func (s *WizardService) Back(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(w *Wizard) error {
		if err := w.Back(); err != nil {
			return ErrWizardState.WithError(err).WithMessage("Already on the first step")
		}
		return nil
	})
}

// Reset 清空表单回到第一步，编辑会话仍指向原活动
func (s *WizardService) Reset(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(w *Wizard) error {
		w.Reset()
		return nil
	})
}

// Submit 保存活动并结束会话
func (s *WizardService) Submit(ctx context.Context, userID, id string) (*models.Campaign, error) {
	// 先加锁再读取会话，锁释放后其他请求只能看到已删除的会话
	release, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !sess.Wizard.CanSubmit() {
		return nil, ErrWizardState.WithMessage("Campaign can only be saved from the last step with name and objective set")
	}

	sess.Wizard.Saving = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	var c *models.Campaign
	if sess.CampaignID != nil {
		c, err = s.campaigns.Update(ctx, *sess.CampaignID, sess.Wizard.Form)
	} else {
		c, err = s.campaigns.Create(ctx, sess.Wizard.Form)
	}
	if err != nil {
		sess.Wizard.Saving = false
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			s.logger.Warn("Failed to release wizard session", zap.String("session_id", id), zap.Error(saveErr))
		}
		return nil, err
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete wizard session", zap.String("session_id", id), zap.Error(err))
	}
	return c, nil
}

// invalidForm 将表单校验错误转换为 400
func invalidForm(err error) error {
	return ErrInvalidRequest.WithError(err).WithMessage(err.Error())
}
