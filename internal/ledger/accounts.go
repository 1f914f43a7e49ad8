package ledger

import (
	"context"
	"strings"

	"github.com/ledgerline/ledgerline/internal/authz"
)

// CreateAccount inserts a chart of accounts node.
func (s *Service) CreateAccount(ctx context.Context, companyID, actorID int64, in AccountInput) (Account, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return Account{}, err
	}
	if !in.Type.Valid() {
		return Account{}, ErrInvalidAccountType
	}
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return Account{}, &ValidationError{Kind: ErrInvalidLineAmount, Line: -1, Detail: "account code and name required"}
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertAccount(ctx, Account{
			CompanyID: companyID,
			Code:      strings.TrimSpace(in.Code),
			Name:      strings.TrimSpace(in.Name),
			Type:      in.Type,
			SubType:   strings.TrimSpace(in.SubType),
			ParentID:  in.ParentID,
			IsActive:  true,
		})
		if err != nil {
			return err
		}
		account = inserted
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, actorID, companyID, "account.create", account.ID, map[string]any{
		"code": account.Code,
	})
	return account, nil
}

// UpdateAccount changes mutable account fields. The type is immutable once
// journal lines reference the account; changing it would invalidate every
// historical balance computed under the old sign convention.
func (s *Service) UpdateAccount(ctx context.Context, companyID, actorID, accountID int64, in AccountInput) (Account, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return Account{}, err
	}
	if !in.Type.Valid() {
		return Account{}, ErrInvalidAccountType
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccountForUpdate(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if in.Type != current.Type {
			used, err := tx.AccountHasLines(ctx, accountID)
			if err != nil {
				return err
			}
			if used {
				return ErrAccountTypeImmutable
			}
		}
		current.Code = strings.TrimSpace(in.Code)
		current.Name = strings.TrimSpace(in.Name)
		current.Type = in.Type
		current.SubType = strings.TrimSpace(in.SubType)
		current.ParentID = in.ParentID
		if err := tx.UpdateAccount(ctx, current); err != nil {
			return err
		}
		account = current
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, actorID, companyID, "account.update", account.ID, nil)
	return account, nil
}

// SetAccountActive toggles the soft-delete flag. Deactivated accounts keep
// their posted history but reject new lines at validation time.
func (s *Service) SetAccountActive(ctx context.Context, companyID, actorID, accountID int64, active bool) error {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetAccountForUpdate(ctx, companyID, accountID); err != nil {
			return err
		}
		return tx.SetAccountActive(ctx, companyID, accountID, active)
	})
	if err != nil {
		return err
	}
	action := "account.deactivate"
	if active {
		action = "account.activate"
	}
	s.record(ctx, actorID, companyID, action, accountID, nil)
	return nil
}

// DeleteAccount hard-deletes an account. The deletion policy refuses while
// any journal line references it; callers should deactivate instead.
func (s *Service) DeleteAccount(ctx context.Context, companyID, actorID, accountID int64) error {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetAccountForUpdate(ctx, companyID, accountID); err != nil {
			return err
		}
		used, err := tx.AccountHasLines(ctx, accountID)
		if err != nil {
			return err
		}
		if used {
			return ErrAccountInUse
		}
		return tx.DeleteAccount(ctx, companyID, accountID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, companyID, "account.delete", accountID, nil)
	return nil
}

// ListAccounts retrieves the chart of accounts for a company.
func (s *Service) ListAccounts(ctx context.Context, companyID int64, includeInactive bool) ([]Account, error) {
	return s.repo.ListAccounts(ctx, companyID, includeInactive)
}
