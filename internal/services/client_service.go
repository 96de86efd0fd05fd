package services

import (
	"context"
	"errors"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"gorm.io/gorm"
)

type ClientService interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	ListClients(ctx context.Context, filter repository.ClientFilter) ([]models.Client, error)
	PatchClient(ctx context.Context, id uint, body []byte) (*models.Client, error)
	DeleteClient(ctx context.Context, id uint) error
}

type clientService struct {
	clientRepo     repository.ClientRepository
	priceTableRepo repository.PriceTableRepository
}

func NewClientService(clientRepo repository.ClientRepository, priceTableRepo repository.PriceTableRepository) ClientService {
	return &clientService{clientRepo: clientRepo, priceTableRepo: priceTableRepo}
}

func (s *clientService) CreateClient(ctx context.Context, client *models.Client) error {
	if err := Validate(client); err != nil {
		return err
	}
	if err := s.checkPriceTable(ctx, client.PriceTableID); err != nil {
		return err
	}
	client.ID = 0
	client.PriceTable = nil
	return s.clientRepo.Create(ctx, client)
}

func (s *clientService) checkPriceTable(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.priceTableRepo.GetByID(ctx, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("price table %d does not exist", *id)
	}
	return err
}

func (s *clientService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "client")
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, filter repository.ClientFilter) ([]models.Client, error) {
	return s.clientRepo.List(ctx, filter)
}

func (s *clientService) PatchClient(ctx context.Context, id uint, body []byte) (*models.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(client, body)
	if err != nil {
		return nil, err
	}
	if err := s.checkPriceTable(ctx, client.PriceTableID); err != nil {
		return nil, err
	}
	if err := s.clientRepo.UpdateColumns(ctx, client, columns); err != nil {
		return nil, err
	}
	return s.GetClient(ctx, id)
}

func (s *clientService) DeleteClient(ctx context.Context, id uint) error {
	return notFound(s.clientRepo.Delete(ctx, id), "client")
}
