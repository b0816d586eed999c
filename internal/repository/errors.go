package repository

import "errors"

var (
	ErrSiteNotFound         = errors.New("site not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrLeaseRequestNotFound = errors.New("lease request not found")
	ErrContractNotFound     = errors.New("lease contract not found")
	ErrPaymentNotFound      = errors.New("rent payment not found")
	ErrInsightNotFound      = errors.New("operational insight not found")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
)
