package usecase

import (
	"context"
	"fmt"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
)

type uploadAuthUseCase struct {
	signer *imagekit.Signer
}

func NewUploadAuthUseCase(signer *imagekit.Signer) UploadAuthUseCase {
	return &uploadAuthUseCase{signer: signer}
}

func (uc *uploadAuthUseCase) IssueUploadCredentials(ctx context.Context) (*imagekit.Credentials, error) {
	creds, err := uc.signer.Issue()
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка выдачи параметров загрузки: %w", err)
	}
	return creds, nil
}
