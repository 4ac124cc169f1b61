package services

// ServiceContainer holds instances of all the application services. It is
// the entry point handlers use to reach business functionality.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	CashSession  CashSessionSvcFacade
	SalePayments SalePaymentsSvcFacade
	Audit        SecurityAuditSvc
}
