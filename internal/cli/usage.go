package cli

const usage = `Usage:
  deamdify [--quote single|double] [--no-verify] [--config PATH] [--repo PATH] [FILE|-]
  deamdify convert [--write | --out DIR] [--format table|json] [--workers N] [--verbose] [options] PATH...
  deamdify check [--format table|json] [--workers N] [--verbose] [options] PATH...

Without a command, FILE (or stdin) is converted and the result written to stdout.
Input that is not an AMD or UMD module is written back unchanged.

Options:
  --quote single|double  Quote style for injected require paths (default: single)
  --no-verify            Skip the syntax and round-trip check of converted output
  --config PATH          Config file (default: .deamdify.yml, .deamdify.yaml, .deamdify.toml or deamdify.json in --repo)
  --repo PATH            Root used for config discovery and reports (default: .)
  --write                Rewrite converted files in place (convert)
  --out DIR              Write converted files, mirrored by relative path, into DIR (convert)
  --format table|json    Report format (default: table)
  --workers N            Files processed concurrently (default: 4)
  --verbose              Print one progress line per file to stderr
  -h, --help             Show this help text

Exit codes:
  0 success, 1 runtime or conversion error, 2 usage error, 3 check found wrappers
`

func Usage() string {
	return usage
}
