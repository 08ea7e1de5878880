package services

import (
	"context"
	"strings"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

const recentTransactionsLimit = 10

type PortfolioServiceI interface {
	CreatePortfolio(ctx context.Context, userID string, req *schemas.CreatePortfolioRequest) (*schemas.PortfolioResponse, error)
	GetPortfolios(ctx context.Context, userID string) (*schemas.GetPortfoliosResponse, error)
	GetPortfolio(ctx context.Context, userID, id string) (*schemas.PortfolioDetailResponse, error)
	UpdatePortfolio(ctx context.Context, userID, id string, req *schemas.UpdatePortfolioRequest) (*schemas.PortfolioResponse, error)
	DeletePortfolio(ctx context.Context, userID, id string) error
}

type PortfolioService struct {
	portfolioRepo     repositories.PortfolioRepository
	transactionRepo   repositories.TransactionRepository
	brokerAccountRepo repositories.BrokerAccountRepository
}

func NewPortfolioService(
	portfolioRepo repositories.PortfolioRepository,
	transactionRepo repositories.TransactionRepository,
	brokerAccountRepo repositories.BrokerAccountRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:     portfolioRepo,
		transactionRepo:   transactionRepo,
		brokerAccountRepo: brokerAccountRepo,
	}
}

func (s *PortfolioService) CreatePortfolio(ctx context.Context, userID string, req *schemas.CreatePortfolioRequest) (*schemas.PortfolioResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.BadRequest("portfolio name is required")
	}
	if !utils.IsSupportedCurrency(req.Currency) {
		return nil, utils.BadRequest("unsupported currency: " + req.Currency)
	}
	if req.BrokerAccountID != nil {
		account, err := s.brokerAccountRepo.GetByIDAndUser(ctx, *req.BrokerAccountID, userID)
		if err != nil {
			return nil, err
		}
		if account == nil || !account.IsActive {
			return nil, utils.NotFound("broker account not found")
		}
	}

	count, err := s.portfolioRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := &models.Portfolio{
		UserID:          userID,
		BrokerAccountID: req.BrokerAccountID,
		Name:            name,
		Currency:        req.Currency,
		Description:     req.Description,
		IsDefault:       count == 0,
	}
	if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, portfolio)
}

func (s *PortfolioService) GetPortfolios(ctx context.Context, userID string) (*schemas.GetPortfoliosResponse, error) {
	portfolios, err := s.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &schemas.GetPortfoliosResponse{Portfolios: make([]schemas.PortfolioResponse, 0, len(portfolios))}
	for i := range portfolios {
		item, err := s.toResponse(ctx, &portfolios[i])
		if err != nil {
			return nil, err
		}
		response.Portfolios = append(response.Portfolios, *item)
	}
	return response, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, userID, id string) (*schemas.PortfolioDetailResponse, error) {
	portfolio, err := s.portfolioRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, utils.NotFound("portfolio not found")
	}

	summary, err := s.toResponse(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByPortfolioID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &schemas.PortfolioDetailResponse{PortfolioResponse: *summary}
	// GetByPortfolioID returns oldest first; surface the newest trades.
	for i := len(transactions) - 1; i >= 0 && len(detail.RecentTransactions) < recentTransactionsLimit; i-- {
		detail.RecentTransactions = append(detail.RecentTransactions, toTransactionResponse(&transactions[i], portfolio.Name))
	}
	return detail, nil
}

func (s *PortfolioService) UpdatePortfolio(ctx context.Context, userID, id string, req *schemas.UpdatePortfolioRequest) (*schemas.PortfolioResponse, error) {
	portfolio, err := s.portfolioRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, utils.NotFound("portfolio not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.BadRequest("portfolio name is required")
		}
		portfolio.Name = name
	}
	if req.Description != nil {
		portfolio.Description = *req.Description
	}
	if req.IsDefault != nil {
		if !*req.IsDefault && portfolio.IsDefault {
			return nil, utils.BadRequest("unset the default by promoting another portfolio")
		}
		if *req.IsDefault && !portfolio.IsDefault {
			if err := s.portfolioRepo.ClearDefaultForUser(ctx, userID, id); err != nil {
				return nil, err
			}
			portfolio.IsDefault = true
		}
	}

	if err := s.portfolioRepo.UpdateDetails(ctx, portfolio); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, portfolio)
}

// DeletePortfolio removes a portfolio and, through the schema's cascade, its
// transactions. The default portfolio stays deletable only when it is the
// user's last one.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, userID, id string) error {
	portfolio, err := s.portfolioRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if portfolio == nil {
		return utils.NotFound("portfolio not found")
	}

	if portfolio.IsDefault {
		count, err := s.portfolioRepo.CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if count > 1 {
			return utils.BadRequest("cannot delete the default portfolio; promote another portfolio first")
		}
	}

	return s.portfolioRepo.Delete(ctx, id)
}

func (s *PortfolioService) toResponse(ctx context.Context, p *models.Portfolio) (*schemas.PortfolioResponse, error) {
	count, err := s.transactionRepo.CountByPortfolioID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	response := &schemas.PortfolioResponse{
		ID:               p.ID,
		Name:             p.Name,
		Currency:         p.Currency,
		Description:      p.Description,
		IsDefault:        p.IsDefault,
		CurrentBalance:   p.CurrentBalance,
		AvgBuyRate:       p.AvgBuyRate,
		TotalInvested:    p.TotalInvested,
		Broker:           "MANUAL",
		BrokerAccountID:  p.BrokerAccountID,
		TransactionCount: count,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if p.BrokerAccountID != nil {
		account, err := s.brokerAccountRepo.GetByIDAndUser(ctx, *p.BrokerAccountID, p.UserID)
		if err != nil {
			return nil, err
		}
		if account != nil {
			response.Broker = account.Broker
			response.AccountAlias = account.AccountAlias
		}
	}
	return response, nil
}

func toTransactionResponse(t *models.Transaction, portfolioName string) schemas.TransactionResponse {
	return schemas.TransactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		Currency:      t.Currency,
		Amount:        t.Amount,
		Rate:          t.Rate,
		KrwAmount:     t.KrwAmount,
		Fee:           t.Fee,
		Memo:          t.Memo,
		TradedAt:      t.TradedAt,
		IsManual:      t.IsManual,
		PortfolioID:   t.PortfolioID,
		PortfolioName: portfolioName,
	}
}
