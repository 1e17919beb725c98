package chip8

// execute runs a decoded instruction. PC was already advanced past the
// instruction, address is the location the word was fetched from.
func (vm *VM) execute(address uint16, ins Instruction) error {
	switch ins.Class {
	case 0x0:
		return vm.executeSystem(address, ins)
	case 0x1: // 1NNN jp addr
		vm.setPC(ins.NNN)
	case 0x2: // 2NNN call addr
		vm.push(vm.pc)
		vm.setPC(ins.NNN)
	case 0x3: // 3XNN se Vx, byte
		vm.skipIf(vm.v[ins.X] == ins.NN)
	case 0x4: // 4XNN sne Vx, byte
		vm.skipIf(vm.v[ins.X] != ins.NN)
	case 0x5: // 5XY0 se Vx, Vy
		vm.skipIf(vm.v[ins.X] == vm.v[ins.Y])
	case 0x6: // 6XNN ld Vx, byte
		vm.setV(ins.X, ins.NN)
	case 0x7: // 7XNN add Vx, byte
		vm.setV(ins.X, vm.v[ins.X]+ins.NN)
	case 0x8:
		return vm.executeArithmetic(address, ins)
	case 0x9: // 9XY0 sne Vx, Vy
		vm.skipIf(vm.v[ins.X] != vm.v[ins.Y])
	case 0xA: // ANNN ld I, addr
		vm.setI(ins.NNN)
	case 0xB: // BNNN jp V0, addr
		vm.setPC(ins.NNN + uint16(vm.v[0]))
	case 0xC: // CXNN rnd Vx, byte
		vm.setV(ins.X, vm.random()&ins.NN)
	case 0xD: // DXYN drw Vx, Vy, nibble
		vm.draw(ins)
	case 0xE:
		return vm.executeKey(address, ins)
	case 0xF:
		return vm.executeMisc(address, ins)
	}
	return nil
}

func (vm *VM) executeSystem(address uint16, ins Instruction) error {
	switch ins.NNN {
	case 0x0E0: // cls
		vm.screen.clear()
		if vm.display != nil {
			vm.display.Clear()
		}
	case 0x0EE: // ret
		vm.setPC(vm.pop())
	default:
		return &DecodeError{Address: address, Word: ins.Word}
	}
	return nil
}

func (vm *VM) executeArithmetic(address uint16, ins Instruction) error {
	vx := vm.v[ins.X]
	vy := vm.v[ins.Y]

	switch ins.N {
	case 0x0: // ld Vx, Vy
		vm.setV(ins.X, vy)
	case 0x1: // or Vx, Vy
		vm.setV(ins.X, vx|vy)
	case 0x2: // and Vx, Vy
		vm.setV(ins.X, vx&vy)
	case 0x3: // xor Vx, Vy
		vm.setV(ins.X, vx^vy)
	case 0x4: // add Vx, Vy
		sum := uint16(vx) + uint16(vy)
		vm.setV(ins.X, uint8(sum))
		vm.setV(flagRegister, flag(sum > 0xFF))
	case 0x5: // sub Vx, Vy
		vm.setV(ins.X, vx-vy)
		vm.setV(flagRegister, flag(vx >= vy))
	case 0x6: // shr Vx
		vm.setV(flagRegister, vx&0x01)
		vm.setV(ins.X, vx>>1)
	case 0x7: // subn Vx, Vy
		vm.setV(ins.X, vy-vx)
		vm.setV(flagRegister, flag(vy >= vx))
	case 0xE: // shl Vx
		vm.setV(flagRegister, vx>>7)
		vm.setV(ins.X, vx<<1)
	default:
		return &DecodeError{Address: address, Word: ins.Word}
	}
	return nil
}

func (vm *VM) executeKey(address uint16, ins Instruction) error {
	switch ins.NN {
	case 0x9E: // skp Vx
		vm.skipIf(vm.keyDown(vm.v[ins.X]))
	case 0xA1: // sknp Vx
		vm.skipIf(!vm.keyDown(vm.v[ins.X]))
	default:
		return &DecodeError{Address: address, Word: ins.Word}
	}
	return nil
}

func (vm *VM) executeMisc(address uint16, ins Instruction) error {
	vx := vm.v[ins.X]

	switch ins.NN {
	case 0x07: // ld Vx, DT
		vm.setV(ins.X, vm.delay)
	case 0x0A: // ld Vx, K
		vm.waitKey(ins.X)
	case 0x15: // ld DT, Vx
		vm.setDelay(vx)
	case 0x18: // ld ST, Vx
		vm.setSound(vx)
	case 0x1E: // add I, Vx
		vm.setI(vm.i + uint16(vx))
	case 0x29: // ld F, Vx
		vm.setI(FontStart + FontGlyphSize*uint16(vx))
	case 0x33: // ld B, Vx
		vm.write(vm.i, vx/100)
		vm.write(vm.i+1, (vx/10)%10)
		vm.write(vm.i+2, vx%10)
	case 0x55: // ld [I], Vx
		for k := uint16(0); k <= uint16(ins.X); k++ {
			vm.write(vm.i+k, vm.v[k])
		}
	case 0x65: // ld Vx, [I]
		for k := uint16(0); k <= uint16(ins.X); k++ {
			vm.setV(uint8(k), vm.read(vm.i+k))
		}
	default:
		return &DecodeError{Address: address, Word: ins.Word}
	}
	return nil
}

// waitKey stores the lowest pressed key or rewinds PC so the instruction is
// fetched again on the next cycle.
func (vm *VM) waitKey(x uint8) {
	for key := uint8(0); key < KeyCount; key++ {
		if vm.keys[key] {
			vm.setV(x, key)
			return
		}
	}
	vm.setPC(vm.pc - 2)
}

func (vm *VM) draw(ins Instruction) {
	sprite := make([]byte, ins.N)
	for row := range sprite {
		sprite[row] = vm.read(vm.i + uint16(row))
	}

	var set func(x, y int, on bool)
	if vm.display != nil {
		set = vm.display.SetPixel
	}
	collision := vm.screen.draw(int(vm.v[ins.X]), int(vm.v[ins.Y]), sprite, set)
	vm.setV(flagRegister, flag(collision))
}

func (vm *VM) skipIf(condition bool) {
	if condition {
		vm.setPC(vm.pc + 2)
	}
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
