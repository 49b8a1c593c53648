package contracts

type ITokenManagement interface {
	UsedTokens(tokens int)
	GetCurrentTokenUsage() int
	DisplayTokens(profileName string, files int, bytes int64)
}
