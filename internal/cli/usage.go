package cli

const usage = `Usage:
  cjslexer parse FILE [--node-env production|development|none] [--call-mode] [--drop-conditional] [--format text|json]
  cjslexer exports SPECIFIER [--wd DIR] [--package NAME] [--format text|json]
  cjslexer batch FILE... [--concurrency N] [--format text|json]

Options:
  --config PATH              Config file (default: .cjslexer.yml, .cjslexer.yaml, .cjslexer.toml or cjslexer.json in --wd)
  --wd DIR                   Working directory for config and node_modules lookup (default: .)
  --package NAME             Package that "." and "./sub" refer to (exports)
  --node-env VALUE           NODE_ENV to assume; none keeps both branches (default: production)
  --call-mode                Recognize __exportStar-style helper calls
  --drop-conditional         Omit names only found under runtime guards
  --concurrency N            Files parsed at once (batch, default: GOMAXPROCS)
  --format text|json         Output format (default: text)
  -v, --verbose              Log each module decision to stderr
  -h, --help                 Show this help text
`

func Usage() string {
	return usage
}
