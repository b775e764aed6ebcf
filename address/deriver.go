package address

import "github.com/ElysonGreber/JKPSol/app/params"

// Derived is a player's state address and its bump seed.
type Derived struct {
	Address PublicKey
	Bump    uint8
}

// Deriver computes the deterministic state address of a player under a fixed
// namespace seed. It performs no I/O.
type Deriver struct {
	ProgramID PublicKey
	Seed      []byte
}

func NewDeriver(programID PublicKey) Deriver {
	return Deriver{ProgramID: programID, Seed: []byte(params.ScoreSeed)}
}

func (d Deriver) Derive(player PublicKey) (Derived, error) {
	addr, bump, err := FindProgramAddress([][]byte{d.Seed, player[:]}, d.ProgramID)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Address: addr, Bump: bump}, nil
}
